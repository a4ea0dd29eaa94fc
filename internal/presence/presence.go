// Package presence answers exactly one question: is this user currently
// connected, anywhere in the cluster? It never tracks state itself — the
// answer is derived by asking the bus whether the user's channel currently
// has a subscriber (spec §4.1, C1).
package presence

import (
	"context"
	"fmt"

	"github.com/pairhub/signalhub/internal/bus"
)

// Channel returns the deterministic presence channel name for a user ID.
// This is the one and only valid format — anything else is a bug.
func Channel(userID string) string {
	return "channel-user-" + userID
}

// Registry answers presence queries against a shared bus.
type Registry struct {
	bus bus.Bus
}

// NewRegistry wraps a Bus as a presence Registry.
func NewRegistry(b bus.Bus) *Registry {
	return &Registry{bus: b}
}

// IsPresent reports whether userID has at least one live subscription on
// its presence channel anywhere in the cluster. A transient bus error is
// surfaced to the caller rather than silently treated as absent — the
// caller (typically the Router) decides the fallback policy, per spec §4.1.
func (r *Registry) IsPresent(ctx context.Context, userID string) (bool, error) {
	channels, err := r.bus.Channels(ctx, Channel(userID))
	if err != nil {
		return false, fmt.Errorf("check presence for %s: %w", userID, err)
	}
	return len(channels) > 0, nil
}

// Subscribe opens a presence subscription for userID. The caller owns the
// returned Subscription and must Close it on every exit path — that Close
// is what makes IsPresent false again once the last session for a user
// disconnects.
func (r *Registry) Subscribe(ctx context.Context, userID string) bus.Subscription {
	return r.bus.Subscribe(ctx, Channel(userID))
}
