package websockets

import "context"

// Publisher pushes wallet updates to connected clients. Delivery is best
// effort: a failed publish never affects the ledger.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
}

var _ Publisher = (*NoOpPublisher)(nil)

// NoOpPublisher drops every message. The engine uses it until a hub is wired.
type NoOpPublisher struct{}

func (*NoOpPublisher) Publish(context.Context, Message) error { return nil }
