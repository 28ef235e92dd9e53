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

const referralMarkerPrefix = "referral_code#"

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: userID},
	}
}

// CreateUser stores a new user and reserves its referral code in the config
// table, so neither the id nor the code can be taken twice.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	stored := user.Clone()
	stored.Version = 1

	userAV, err := encodeUser(stored)
	if err != nil {
		return nil, err
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Users),
				Item:                userAV,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			},
		},
	}
	if stored.ReferralCode != "" {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.Tables.Config),
				Item: map[string]types.AttributeValue{
					"id":      &types.AttributeValueMemberS{Value: referralMarkerPrefix + stored.ReferralCode},
					"user_id": &types.AttributeValueMemberS{Value: stored.UID},
				},
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failed, ok := cancelledByCondition(err); ok && len(failed) > 0 {
			if failed[0] == 0 {
				return nil, fmt.Errorf("user with ID %s: %w", stored.UID, storage.ErrAlreadyExists)
			}
			return nil, fmt.Errorf("referral code %s: %w", stored.ReferralCode, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return stored, nil
}

// GetUser retrieves a user with a strongly consistent read.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Users),
		Key:            userKey(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("user with ID %s: %w", userID, storage.ErrNotFound)
	}
	return decodeUser(result.Item)
}

// FindUserByReferralCode queries the referral code index.
func (s *Store) FindUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Users),
		IndexName:              aws.String(referralCodeIndex),
		KeyConditionExpression: aws.String("referral_code = :code"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query referral code: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("referral code %s: %w", code, storage.ErrNotFound)
	}
	return decodeUser(result.Items[0])
}

// ListUsers scans the users table and orders users by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	items, err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.Tables.Users),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	users, err := decodeUsers(items)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].UID < users[j].UID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// ListPendingKyc queries the sparse KYC index, oldest submission first.
func (s *Store) ListPendingKyc(ctx context.Context) ([]models.User, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Users),
		IndexName:              aws.String(kycStatusIndex),
		KeyConditionExpression: aws.String("kyc_status = :status"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.KYC_SUBMITTED)},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query pending KYC: %w", err)
	}
	return decodeUsers(items)
}

// UpdateUser reads the user, runs fn and writes the result conditioned on the
// version that was read. A lost race re-reads and runs fn again.
func (s *Store) UpdateUser(ctx context.Context, userID string, fn storage.UserMutator) (*models.User, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := s.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		m, err := fn(current)
		if err != nil {
			return nil, err
		}

		items, err := s.userWriteItems(current, m)
		if err != nil {
			return nil, err
		}

		err = s.commit(ctx, items, 1)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, errVersionConflict) {
			return nil, err
		}
		slog.Debug("user update lost a race, retrying", "user_id", userID, "attempt", attempt)
	}
	return nil, fmt.Errorf("user with ID %s: %w", userID, storage.ErrConflict)
}

// userWriteItems bumps u.Version and returns the transaction items that
// persist u and m. The user put is always the first item.
func (s *Store) userWriteItems(u *models.User, m *storage.Mutation) ([]types.TransactWriteItem, error) {
	readVersion := u.Version
	u.Version++

	userAV, err := encodeUser(u)
	if err != nil {
		return nil, err
	}
	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Users),
				Item:                userAV,
				ConditionExpression: aws.String("version = :version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(readVersion, 10)},
				},
			},
		},
	}
	if m == nil {
		return items, nil
	}

	for _, e := range m.Entries {
		entryAV, err := encodeEntry(e)
		if err != nil {
			return nil, err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Ledger),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
			},
		})
	}

	for _, id := range m.SettleEntries {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(s.Tables.Ledger),
				Key: map[string]types.AttributeValue{
					"user_id":  &types.AttributeValueMemberS{Value: u.UID},
					"entry_id": &types.AttributeValueMemberS{Value: id},
				},
				UpdateExpression:    aws.String("SET #status = :status"),
				ConditionExpression: aws.String("attribute_exists(entry_id)"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":status": &types.AttributeValueMemberS{Value: string(m.SettleStatus)},
				},
			},
		})
	}

	if m.Withdrawal != nil {
		wAV, err := encodeWithdrawal(m.Withdrawal, 1)
		if err != nil {
			return nil, err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Withdrawals),
				Item:                wAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}
	return items, nil
}
