package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func entryItem(t *testing.T, e models.LedgerEntry) map[string]types.AttributeValue {
	t.Helper()
	av, err := encodeEntry(e)
	require.NoError(t, err)
	return av
}

func TestEncodeUser(t *testing.T) {
	t.Run("Indexes Only Pending KYC", func(t *testing.T) {
		u := sampleUser("u1")
		av := userItem(t, u)
		assert.NotContains(t, av, "kyc_status")

		submitted := testNow
		u.Kyc = models.KycRecord{Status: models.KYC_SUBMITTED, SubmittedAt: &submitted}
		av = userItem(t, u)
		assert.Equal(t, "SUBMITTED", av["kyc_status"].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, "2025-03-01T12:00:00.000000000Z", av["kyc_submitted_at"].(*types.AttributeValueMemberS).Value)
	})

	t.Run("Next Release Is Earliest Hold", func(t *testing.T) {
		u := sampleUser("u1")
		assert.NotContains(t, userItem(t, u), "next_release_at")

		u.Holds = []models.Hold{
			{EntryID: "b", ReleaseAt: testNow.Add(2 * time.Hour)},
			{EntryID: "a", ReleaseAt: testNow.Add(time.Hour)},
		}
		av := userItem(t, u)
		assert.Equal(t, "2025-03-01T13:00:00.000000000Z", av["next_release_at"].(*types.AttributeValueMemberS).Value)
	})
}

func TestListLedgerEntries(t *testing.T) {
	t.Run("Newest First With Limit", func(t *testing.T) {
		// Arrange
		store, mockClient := newTestStore()
		e := models.LedgerEntry{ID: "01B", UserID: "u1", Type: models.EARN_VIDEO, Amount: decimal.RequireFromString("0.06"), Status: models.PENDING, Timestamp: testNow}
		item := entryItem(t, e)
		// Settled after it was posted.
		item["status"] = &types.AttributeValueMemberS{Value: string(models.COMPLETED)}

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return *in.TableName == "ledger" && *in.Limit == 3 && !*in.ScanIndexForward
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil)

		// Act
		entries, err := store.ListLedgerEntries(context.Background(), "u1", 3)

		// Assert
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.COMPLETED, entries[0].Status)
		assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("0.06")))
		mockClient.AssertExpectations(t)
	})

	t.Run("Query Fails", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("dynamodb error"))

		_, err := store.ListLedgerEntries(context.Background(), "u1", 0)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query ledger entries")
	})
}

func TestListLedgerEntriesSince(t *testing.T) {
	store, mockClient := newTestStore()
	later := models.LedgerEntry{ID: "01C", UserID: "u2", Status: models.COMPLETED, Timestamp: testNow.Add(time.Minute)}
	earlier := models.LedgerEntry{ID: "01A", UserID: "u1", Status: models.COMPLETED, Timestamp: testNow}

	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		since := in.ExpressionAttributeValues[":since"].(*types.AttributeValueMemberS).Value
		return *in.IndexName == ledgerTimeIndex && since == "2025-03-01T12:00:00.000000000Z"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{entryItem(t, later), entryItem(t, earlier)}}, nil)

	entries, err := store.ListLedgerEntriesSince(context.Background(), testNow)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "01A", entries[0].ID)
	assert.Equal(t, "01C", entries[1].ID)
}

func TestListDueHolds(t *testing.T) {
	// Arrange
	store, mockClient := newTestStore()
	u := sampleUser("u1")
	u.Holds = []models.Hold{
		{EntryID: "late", TaskType: models.LINK, ReleaseAt: testNow.Add(time.Hour)},
		{EntryID: "due", TaskType: models.VIDEO, ReleaseAt: testNow.Add(-time.Minute)},
	}
	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return *in.FilterExpression == "next_release_at <= :cutoff"
	})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{userItem(t, u)}}, nil)

	// Act
	due, err := store.ListDueHolds(context.Background(), testNow)

	// Assert
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "u1", due[0].UserID)
	assert.Equal(t, "due", due[0].Hold.EntryID)
}
