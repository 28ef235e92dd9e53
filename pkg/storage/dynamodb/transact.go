package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// errVersionConflict signals that a versioned item changed after it was read.
var errVersionConflict = errors.New("version conflict")

// commit executes items in one transaction. The first versioned items carry
// a version condition. It returns errVersionConflict when one of them lost
// its condition and ErrAlreadyExists when an insert collided with an
// existing record.
func (s *Store) commit(ctx context.Context, items []types.TransactWriteItem, versioned int) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}

	failed, ok := cancelledByCondition(err)
	if !ok || len(failed) == 0 {
		return fmt.Errorf("failed to execute transaction: %w", err)
	}
	if failed[0] < versioned {
		return errVersionConflict
	}
	return fmt.Errorf("failed to execute transaction: %w", storage.ErrAlreadyExists)
}

// queryAll follows a query across every result page.
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		page, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(page.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
}

// scanAll follows a scan across every result page.
func (s *Store) scanAll(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		page, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(page.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
}
