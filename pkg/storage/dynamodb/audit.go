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
)

// AppendAudit puts a new entry. Entry ids are never overwritten.
func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditLogEntry) error {
	av, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	av["timestamp"] = &types.AttributeValueMemberS{Value: formatTime(entry.Timestamp)}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Audit),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put audit entry: %w", err)
	}
	return nil
}

// ListAudit returns entries newest first. A non-empty adminID queries the
// per-admin index instead of scanning the table.
func (s *Store) ListAudit(ctx context.Context, adminID string) ([]models.AuditLogEntry, error) {
	var (
		items []map[string]types.AttributeValue
		err   error
	)
	if adminID == "" {
		items, err = s.scanAll(ctx, &dynamodb.ScanInput{
			TableName: aws.String(s.Tables.Audit),
		})
	} else {
		items, err = s.queryAll(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Audit),
			IndexName:              aws.String(auditAdminIndex),
			KeyConditionExpression: aws.String("admin_id = :admin_id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":admin_id": &types.AttributeValueMemberS{Value: adminID},
			},
			ScanIndexForward: aws.Bool(false),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []models.AuditLogEntry
	if err := attributevalue.UnmarshalListOfMaps(items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit entries: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}
