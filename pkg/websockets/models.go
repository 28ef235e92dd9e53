package websockets

import "github.com/chris/fairtask-ledger/pkg/models"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeWalletUpdate is for messages that update wallet balances.
	MessageTypeWalletUpdate MessageType = "walletUpdate"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	UserID  string      `json:"user_id,omitempty"`
	Payload interface{} `json:"payload"`
}

// WalletUpdatePayload is the payload for a walletUpdate message.
type WalletUpdatePayload struct {
	EntryID string                 `json:"entry_id,omitempty"`
	Reason  models.TransactionType `json:"reason"`
	Change  string                 `json:"change"`
	Wallet  models.Wallet          `json:"wallet"`
}

// WalletUpdate builds the message sent after a user's wallet changed.
func WalletUpdate(userID string, reason models.TransactionType, entryID, change string, wallet models.Wallet) Message {
	return Message{
		Type:   MessageTypeWalletUpdate,
		UserID: userID,
		Payload: WalletUpdatePayload{
			EntryID: entryID,
			Reason:  reason,
			Change:  change,
			Wallet:  wallet,
		},
	}
}
