package presence

import (
	"context"
	"testing"

	"github.com/pairhub/signalhub/internal/bus"
)

func TestChannelFormat(t *testing.T) {
	if got, want := Channel("abc"), "channel-user-abc"; got != want {
		t.Fatalf("Channel() = %q, want %q", got, want)
	}
}

func TestIsPresentReflectsSubscriptionLifetime(t *testing.T) {
	b := bus.NewMemory()
	registry := NewRegistry(b)
	ctx := context.Background()

	present, err := registry.IsPresent(ctx, "u1")
	if err != nil {
		t.Fatalf("IsPresent: %v", err)
	}
	if present {
		t.Fatal("expected u1 absent before subscribing")
	}

	sub := registry.Subscribe(ctx, "u1")

	present, err = registry.IsPresent(ctx, "u1")
	if err != nil {
		t.Fatalf("IsPresent: %v", err)
	}
	if !present {
		t.Fatal("expected u1 present while subscribed")
	}

	sub.Close()

	present, err = registry.IsPresent(ctx, "u1")
	if err != nil {
		t.Fatalf("IsPresent: %v", err)
	}
	if present {
		t.Fatal("expected u1 absent after unsubscribing")
	}
}

func TestIsPresentDistinguishesUsers(t *testing.T) {
	b := bus.NewMemory()
	registry := NewRegistry(b)
	ctx := context.Background()

	sub := registry.Subscribe(ctx, "u1")
	defer sub.Close()

	present, err := registry.IsPresent(ctx, "u2")
	if err != nil {
		t.Fatalf("IsPresent: %v", err)
	}
	if present {
		t.Fatal("expected u2 absent — only u1 subscribed")
	}
}
