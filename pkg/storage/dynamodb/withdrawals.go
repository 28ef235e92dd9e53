package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

func (s *Store) getWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, int64, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Withdrawals),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get withdrawal from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, 0, fmt.Errorf("withdrawal with ID %s: %w", id, storage.ErrNotFound)
	}
	return decodeWithdrawal(result.Item)
}

// GetWithdrawal retrieves a withdrawal request by id.
func (s *Store) GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	w, _, err := s.getWithdrawal(ctx, id)
	return w, err
}

// ListWithdrawals scans every request and orders them newest first.
func (s *Store) ListWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	items, err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.Tables.Withdrawals),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan withdrawals: %w", err)
	}

	out := make([]models.WithdrawalRequest, 0, len(items))
	for _, item := range items {
		w, _, err := decodeWithdrawal(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateWithdrawal reads the request and its owner, runs fn and writes both
// in one transaction conditioned on the versions that were read.
func (s *Store) UpdateWithdrawal(ctx context.Context, id string, fn storage.WithdrawalMutator) (*models.WithdrawalRequest, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		w, version, err := s.getWithdrawal(ctx, id)
		if err != nil {
			return nil, err
		}
		owner, err := s.GetUser(ctx, w.UserID)
		if err != nil {
			return nil, err
		}

		m, err := fn(w, owner)
		if err != nil {
			return nil, err
		}

		wAV, err := encodeWithdrawal(w, version+1)
		if err != nil {
			return nil, err
		}
		ownerItems, err := s.userWriteItems(owner, m)
		if err != nil {
			return nil, err
		}
		items := append([]types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Withdrawals),
					Item:                wAV,
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(version, 10)},
					},
				},
			},
		}, ownerItems...)

		err = s.commit(ctx, items, 2)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, errVersionConflict) {
			return nil, err
		}
		slog.Debug("withdrawal update lost a race, retrying", "withdrawal_id", id, "attempt", attempt)
	}
	return nil, fmt.Errorf("withdrawal with ID %s: %w", id, storage.ErrConflict)
}
