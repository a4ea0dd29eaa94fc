// Package bus abstracts the pub/sub fabric the signaling hub is built on:
// presence (does a channel have any subscriber?), routing (publish onto a
// recipient's channel), and delivery (receive whatever lands on a channel
// this process subscribed to).
//
// The interface exists for the same reason the teacher puts Postgres behind
// repository.*Repository interfaces: internal/presence and
// internal/signaling can be tested against an in-memory fake instead of a
// live Redis instance.
package bus

import "context"

// Bus is the subset of pub/sub operations the hub needs. It is implemented
// by Redis in production (Redis) and by an in-memory fake in tests.
type Bus interface {
	// Publish sends message to channel. Best-effort: if there is no
	// subscriber, the message is simply dropped — this is pub/sub, not a
	// queue.
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe opens a subscription to channel. The caller must Close it
	// on every exit path.
	Subscribe(ctx context.Context, channel string) Subscription

	// Channels returns the names of currently active channels matching
	// pattern. Used by presence to test "does channel-user-<id> exist".
	Channels(ctx context.Context, pattern string) ([]string, error)
}

// Subscription is a single subscriber's view of a channel.
type Subscription interface {
	// Receive blocks until a message arrives, ctx is cancelled, or the
	// subscription is closed elsewhere. A non-nil error means the
	// subscription is no longer usable.
	Receive(ctx context.Context) ([]byte, error)

	// Close releases the subscription. Idempotent.
	Close() error
}
