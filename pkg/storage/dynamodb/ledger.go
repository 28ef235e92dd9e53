package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/models"
)

// ListLedgerEntries queries the user's partition newest first. Entry ids are
// ULIDs, so the sort key orders entries by time. A limit <= 0 returns all of
// them.
func (s *Store) ListLedgerEntries(ctx context.Context, userID string, limit int32) ([]models.LedgerEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		ConsistentRead:   aws.Bool(true),
	}

	var items []map[string]types.AttributeValue
	if limit > 0 {
		input.Limit = aws.Int32(limit)
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query ledger entries: %w", err)
		}
		items = result.Items
	} else {
		var err error
		items, err = s.queryAll(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query ledger entries: %w", err)
		}
	}

	return decodeEntries(items)
}

// ListLedgerEntriesSince queries the ledger time index for every entry posted
// at or after since.
func (s *Store) ListLedgerEntriesSince(ctx context.Context, since time.Time) ([]models.LedgerEntry, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(ledgerTimeIndex),
		KeyConditionExpression: aws.String("gsi1pk = :pk AND #ts >= :since"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":    &types.AttributeValueMemberS{Value: ledgerPartition},
			":since": &types.AttributeValueMemberS{Value: formatTime(since)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger since %s: %w", since.Format(time.RFC3339), err)
	}

	entries, err := decodeEntries(items)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
