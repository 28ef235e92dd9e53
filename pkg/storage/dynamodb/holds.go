package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// ListDueHolds scans for users whose earliest hold is due and returns each of
// their holds that has reached cutoff. Users without holds carry no
// next_release_at attribute and never match the filter.
func (s *Store) ListDueHolds(ctx context.Context, cutoff time.Time) ([]storage.DueHold, error) {
	items, err := s.scanAll(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.Tables.Users),
		FilterExpression: aws.String("next_release_at <= :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": &types.AttributeValueMemberS{Value: formatTime(cutoff)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for due holds: %w", err)
	}

	users, err := decodeUsers(items)
	if err != nil {
		return nil, err
	}

	var out []storage.DueHold
	for _, u := range users {
		for _, h := range u.Holds {
			if !h.ReleaseAt.After(cutoff) {
				out = append(out, storage.DueHold{UserID: u.UID, Hold: h})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hold.EntryID < out[j].Hold.EntryID })
	return out, nil
}
