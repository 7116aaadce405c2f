package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mcortesgranados/refacil-ledger/pkg/models"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
)

const conditionalCheckFailed = "ConditionalCheckFailed"

// AppendTransaction atomically inserts the transaction record and adjusts the
// user's balance via TransactWriteItems. The balance update carries the
// authoritative funds check as a condition expression, so the read-then-write
// race between concurrent appends for the same user is resolved by DynamoDB:
// the loser's version condition fails and the whole unit is cancelled.
func (s *Store) AppendTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	// Marshal the transaction for the Put operation.
	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	// 1. Read the current balance item for the optimistic version check.
	balance, err := s.getBalanceRecord(ctx, tx.UserId)
	if errors.Is(err, storage.ErrNotFound) {
		if tx.Type == models.WITHDRAW {
			// No balance item means a zero balance; any withdrawal overdraws it.
			return nil, storage.ErrInsufficientFunds
		}
		return s.appendWithNewBalance(ctx, tx, txAV)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	// 2. Compute the new balance and reject an overdraft before going to the network.
	newBalance := balance.Balance + tx.SignedAmount()
	if tx.Type == models.WITHDRAW && newBalance < 0 {
		return nil, storage.ErrInsufficientFunds
	}

	amountAV, err := attributevalue.Marshal(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amount: %w", err)
	}

	// The version check alone already serializes concurrent appends; the
	// balance condition re-asserts the funds check inside the atomic unit.
	condition := "version = :version"
	values := map[string]types.AttributeValue{
		":amount":  amountAV,
		":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", balance.Version)},
		":inc":     &types.AttributeValueMemberN{Value: "1"},
	}
	update := "SET balance = balance + :amount, version = version + :inc"
	if tx.Type == models.WITHDRAW {
		update = "SET balance = balance - :amount, version = version + :inc"
		condition = "balance >= :amount AND version = :version"
	}

	// 3. Construct the TransactWriteItems input.
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Adjust the user's balance.
				Update: &types.Update{
					TableName: aws.String(s.BalancesTableName),
					Key: map[string]types.AttributeValue{
						"user_id": &types.AttributeValueMemberS{Value: tx.UserId},
					},
					UpdateExpression:          aws.String(update),
					ConditionExpression:       aws.String(condition),
					ExpressionAttributeValues: values,
				},
			},
			{
				// Operation 2: Create the transaction record.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                txAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	// 4. Execute the transaction.
	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		return nil, s.mapCancellation(err, tx.Type)
	}

	return tx, nil
}

// appendWithNewBalance handles the first deposit for a user: the balance item
// is created in the same atomic unit as the transaction insert.
func (s *Store) appendWithNewBalance(ctx context.Context, tx *models.Transaction, txAV map[string]types.AttributeValue) (*models.Transaction, error) {
	balanceAV, err := attributevalue.MarshalMap(&models.Balance{
		UserId:  tx.UserId,
		Balance: tx.Amount,
		Version: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal balance: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Create the user's balance item. If a concurrent
				// append created it first, the condition fails and the caller
				// retries against the existing item.
				Put: &types.Put{
					TableName:           aws.String(s.BalancesTableName),
					Item:                balanceAV,
					ConditionExpression: aws.String("attribute_not_exists(user_id)"),
				},
			},
			{
				// Operation 2: Create the transaction record.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                txAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		return nil, s.mapCancellation(err, tx.Type)
	}

	return tx, nil
}

// mapCancellation translates a TransactWriteItems failure into the store's
// error taxonomy. The cancellation reasons arrive in TransactItems order:
// index 0 is the balance operation, index 1 the transaction Put.
func (s *Store) mapCancellation(err error, txType models.TransactionType) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return fmt.Errorf("failed to execute transaction: %w", err)
	}

	reasons := tce.CancellationReasons
	if len(reasons) > 1 && reasons[1].Code != nil && *reasons[1].Code == conditionalCheckFailed {
		return storage.ErrDuplicateTransaction
	}
	if len(reasons) > 0 && reasons[0].Code != nil && *reasons[0].Code == conditionalCheckFailed {
		if txType == models.WITHDRAW {
			return storage.ErrInsufficientFunds
		}
		return fmt.Errorf("balance write conflict: %w", err)
	}
	return fmt.Errorf("failed to execute transaction: %w", err)
}
