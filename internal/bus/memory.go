package bus

import (
	"context"
	"path/filepath"
	"sync"
)

// Memory is an in-process Bus for tests: no network, no serialization,
// just channels fanning out to channels. It implements the exact semantics
// internal/presence and internal/signaling depend on — a channel "exists"
// iff it has at least one live subscription — without requiring a Redis
// instance in the test binary.
type Memory struct {
	mu   sync.Mutex
	subs map[string][]*memorySubscription
}

// NewMemory returns a ready, empty in-memory bus.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]*memorySubscription)}
}

func (m *Memory) Publish(ctx context.Context, channel string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[channel] {
		select {
		case sub.ch <- message:
		default:
			// Best-effort like real pub/sub: a slow subscriber misses
			// the message rather than blocking the publisher.
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, channel string) Subscription {
	sub := &memorySubscription{
		bus:     m,
		channel: channel,
		ch:      make(chan []byte, 64),
		closed:  make(chan struct{}),
	}

	m.mu.Lock()
	m.subs[channel] = append(m.subs[channel], sub)
	m.mu.Unlock()

	return sub
}

func (m *Memory) Channels(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []string
	for channel, subs := range m.subs {
		if len(subs) == 0 {
			continue
		}
		ok, err := filepath.Match(pattern, channel)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, channel)
		}
	}
	return matches, nil
}

func (m *Memory) remove(sub *memorySubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[sub.channel]
	for i, s := range subs {
		if s == sub {
			m.subs[sub.channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(m.subs[sub.channel]) == 0 {
		delete(m.subs, sub.channel)
	}
}

type memorySubscription struct {
	bus     *Memory
	channel string
	ch      chan []byte
	once    sync.Once
	closed  chan struct{}
}

func (s *memorySubscription) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-s.ch:
		return msg, nil
	case <-s.closed:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.closed)
	})
	return nil
}
