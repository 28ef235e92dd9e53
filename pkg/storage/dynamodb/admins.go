package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

func adminKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *Store) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Admins),
		Key:            adminKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get admin from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("admin with ID %s: %w", id, storage.ErrNotFound)
	}

	var admin models.Admin
	if err := attributevalue.UnmarshalMap(result.Item, &admin); err != nil {
		return nil, fmt.Errorf("failed to unmarshal admin: %w", err)
	}
	return &admin, nil
}

func (s *Store) CreateAdmin(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	av, err := attributevalue.MarshalMap(admin)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal admin: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Admins),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, fmt.Errorf("admin with ID %s: %w", admin.ID, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to put admin: %w", err)
	}
	return admin, nil
}

func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.Tables.Admins),
		Key:                 adminKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("admin with ID %s: %w", id, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return nil
}

// ListAdmins scans the admins table and orders admins by creation time.
func (s *Store) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	items, err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.Tables.Admins),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan admins: %w", err)
	}

	var admins []models.Admin
	if err := attributevalue.UnmarshalListOfMaps(items, &admins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal admins: %w", err)
	}
	sort.Slice(admins, func(i, j int) bool {
		if admins[i].CreatedAt.Equal(admins[j].CreatedAt) {
			return admins[i].ID < admins[j].ID
		}
		return admins[i].CreatedAt.Before(admins[j].CreatedAt)
	})
	return admins, nil
}
