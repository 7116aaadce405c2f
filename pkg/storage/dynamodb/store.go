package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

// DynamoDBAPI captures the subset of the DynamoDB client used by the store.
// Mocks for it are generated with mockery.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements storage.LedgerStore using AWS DynamoDB. It follows the
// maintained-balance strategy: the balance item is updated in the same
// TransactWriteItems unit as the transaction insert, guarded by condition
// expressions on an optimistic version counter.
type Store struct {
	Client                DynamoDBAPI
	TransactionsTableName string
	BalancesTableName     string
}

// New creates a new Store.
func New(client DynamoDBAPI, transactionsTable, balancesTable string) *Store {
	return &Store{
		Client:                client,
		TransactionsTableName: transactionsTable,
		BalancesTableName:     balancesTable,
	}
}

// Make sure we conform to the interface
var _ storage.LedgerStore = (*Store)(nil)
