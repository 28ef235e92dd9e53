package dynamodb

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/models"
)

// ledgerPartition is the constant partition key of the ledger time index.
const ledgerPartition = "LEDGER"

// userRecord is the stored form of a user.
type userRecord struct {
	UserID         string `dynamodbav:"user_id"`
	Version        int64  `dynamodbav:"version"`
	ReferralCode   string `dynamodbav:"referral_code,omitempty"`
	KycStatus      string `dynamodbav:"kyc_status,omitempty"`
	KycSubmittedAt string `dynamodbav:"kyc_submitted_at,omitempty"`
	NextReleaseAt  string `dynamodbav:"next_release_at,omitempty"`
	CreatedAt      string `dynamodbav:"created_at"`
	Doc            string `dynamodbav:"doc"`
}

func encodeUser(u *models.User) (map[string]types.AttributeValue, error) {
	doc, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	rec := userRecord{
		UserID:       u.UID,
		Version:      u.Version,
		ReferralCode: u.ReferralCode,
		CreatedAt:    formatTime(u.CreatedAt),
		Doc:          string(doc),
	}
	// The KYC index only holds users awaiting review.
	if u.Kyc.Status == models.KYC_SUBMITTED && u.Kyc.SubmittedAt != nil {
		rec.KycStatus = string(u.Kyc.Status)
		rec.KycSubmittedAt = formatTime(*u.Kyc.SubmittedAt)
	}
	if next := u.NextHoldRelease(); !next.IsZero() {
		rec.NextReleaseAt = formatTime(next)
	}
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	return av, nil
}

func decodeUser(item map[string]types.AttributeValue) (*models.User, error) {
	var rec userRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	var u models.User
	if err := json.Unmarshal([]byte(rec.Doc), &u); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", rec.UserID, err)
	}
	u.Version = rec.Version
	return &u, nil
}

func decodeUsers(items []map[string]types.AttributeValue) ([]models.User, error) {
	out := make([]models.User, 0, len(items))
	for _, item := range items {
		u, err := decodeUser(item)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

// ledgerRecord is the stored form of a ledger entry. Status lives outside the
// document so settling an entry is a single attribute update.
type ledgerRecord struct {
	UserID    string `dynamodbav:"user_id"`
	EntryID   string `dynamodbav:"entry_id"`
	GSI1PK    string `dynamodbav:"gsi1pk"`
	Timestamp string `dynamodbav:"timestamp"`
	Status    string `dynamodbav:"status"`
	Doc       string `dynamodbav:"doc"`
}

func encodeEntry(e models.LedgerEntry) (map[string]types.AttributeValue, error) {
	doc, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger entry: %w", err)
	}
	av, err := attributevalue.MarshalMap(ledgerRecord{
		UserID:    e.UserID,
		EntryID:   e.ID,
		GSI1PK:    ledgerPartition,
		Timestamp: formatTime(e.Timestamp),
		Status:    string(e.Status),
		Doc:       string(doc),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger entry: %w", err)
	}
	return av, nil
}

func decodeEntries(items []map[string]types.AttributeValue) ([]models.LedgerEntry, error) {
	var recs []ledgerRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}
	out := make([]models.LedgerEntry, 0, len(recs))
	for _, rec := range recs {
		var e models.LedgerEntry
		if err := json.Unmarshal([]byte(rec.Doc), &e); err != nil {
			return nil, fmt.Errorf("failed to decode ledger entry %s: %w", rec.EntryID, err)
		}
		e.Status = models.TransactionStatus(rec.Status)
		out = append(out, e)
	}
	return out, nil
}

// withdrawalRecord is the stored form of a withdrawal request.
type withdrawalRecord struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Status    string `dynamodbav:"status"`
	CreatedAt string `dynamodbav:"created_at"`
	Version   int64  `dynamodbav:"version"`
	Doc       string `dynamodbav:"doc"`
}

func encodeWithdrawal(w *models.WithdrawalRequest, version int64) (map[string]types.AttributeValue, error) {
	doc, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode withdrawal: %w", err)
	}
	av, err := attributevalue.MarshalMap(withdrawalRecord{
		ID:        w.ID,
		UserID:    w.UserID,
		Status:    string(w.Status),
		CreatedAt: formatTime(w.CreatedAt),
		Version:   version,
		Doc:       string(doc),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal withdrawal: %w", err)
	}
	return av, nil
}

func decodeWithdrawal(item map[string]types.AttributeValue) (*models.WithdrawalRequest, int64, error) {
	var rec withdrawalRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal withdrawal: %w", err)
	}
	var w models.WithdrawalRequest
	if err := json.Unmarshal([]byte(rec.Doc), &w); err != nil {
		return nil, 0, fmt.Errorf("failed to decode withdrawal %s: %w", rec.ID, err)
	}
	return &w, rec.Version, nil
}
