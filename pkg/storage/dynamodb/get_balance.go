package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

// GetBalance returns the user's maintained balance. It must reflect every
// append committed before the call, hence the consistent read.
func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	balance, err := s.getBalanceRecord(ctx, userID)
	if err != nil {
		return 0, err
	}
	return balance.Balance, nil
}

// getBalanceRecord retrieves the full balance item, including the version
// counter used for optimistic locking on the write path.
func (s *Store) getBalanceRecord(ctx context.Context, userID string) (*models.Balance, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal balance user ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.BalancesTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrNotFound
	}

	var balance models.Balance
	if err := attributevalue.UnmarshalMap(result.Item, &balance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal balance: %w", err)
	}

	return &balance, nil
}
