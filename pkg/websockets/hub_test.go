package websockets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubPublish(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	alice := dial(t, srv, "?user_id=alice")
	bob := dial(t, srv, "?user_id=bob")
	waitForClients(t, hub, 2)

	wallet := models.Wallet{Main: decimal.NewFromInt(5), Pending: decimal.Zero, Bonus: decimal.Zero}
	err := hub.Publish(context.Background(), WalletUpdate("alice", models.BONUS_UNLOCK, "01A", "5", wallet))
	require.NoError(t, err)

	t.Run("Subscriber Receives Own Update", func(t *testing.T) {
		_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := alice.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type    MessageType         `json:"type"`
			UserID  string              `json:"user_id"`
			Payload WalletUpdatePayload `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeWalletUpdate, msg.Type)
		assert.Equal(t, "alice", msg.UserID)
		assert.Equal(t, models.BONUS_UNLOCK, msg.Payload.Reason)
		assert.True(t, msg.Payload.Wallet.Main.Equal(decimal.NewFromInt(5)))
	})

	t.Run("Other Subscriber Receives Nothing", func(t *testing.T) {
		_ = bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		_, _, err := bob.ReadMessage()
		assert.Error(t, err)
	})
}
