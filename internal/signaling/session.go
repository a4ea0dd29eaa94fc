package signaling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/bus"
	"github.com/pairhub/signalhub/internal/models"
)

// outboundBuffer bounds how far a slow client's queue can grow before the
// session gives up on it. Chosen generously above normal signaling traffic
// (a handful of messages per call) so only a genuinely stuck client trips
// it.
const outboundBuffer = 64

// writeWait bounds how long a single WebSocket write may block.
const writeWait = 10 * time.Second

// Session owns one authenticated WebSocket connection end to end: reading
// client frames, receiving bus deliveries for this user, and writing both
// out through a single writer goroutine. Two goroutines produce outbound
// bytes (bus loop, and direct replies from the read loop) but only one ever
// calls conn.WriteMessage — gorilla/websocket connections are not safe for
// concurrent writers, per spec §4.4's single-writer requirement.
type Session struct {
	conn   *websocket.Conn
	user   models.User
	router *Router
	log    *zap.Logger

	sub      bus.Subscription
	outbound chan []byte
}

// NewSession wires a freshly upgraded connection to router for the given
// authenticated user. Call Run to start serving it.
func NewSession(conn *websocket.Conn, user models.User, router *Router, log *zap.Logger) *Session {
	return &Session{
		conn:     conn,
		user:     user,
		router:   router,
		log:      log.With(zap.String("user_id", user.ID.String())),
		outbound: make(chan []byte, outboundBuffer),
	}
}

// Run subscribes the session to its user's presence channel, publishes a
// teammate_online event to every teammate, and blocks until the connection
// closes or ctx is cancelled. Cleanup (unsubscribe, close conn) always runs
// before Run returns.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.sub = s.router.presence.Subscribe(ctx, s.user.ID.String())
	defer s.sub.Close()

	s.router.announceOnline(ctx, s.user)

	errCh := make(chan error, 3)
	go s.writeLoop(ctx, errCh)
	go s.busLoop(ctx, errCh)
	go s.readLoop(ctx, errCh)

	err := <-errCh
	cancel()
	// readLoop blocks in ReadMessage, which does not observe ctx; closing
	// the connection is what unblocks it.
	s.conn.Close()
	// Drain the other two goroutines' completion so Run doesn't return
	// while they're still touching s.conn.
	<-errCh
	<-errCh

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readLoop decodes client frames and hands them to the router. A decode
// failure for an unknown type is logged and the connection stays open, per
// spec §4.2, and any other decode failure is answered with an error message
// — only a transport-level read error ends the session. Only text frames are accepted; binary frames are
// dropped with a warning per spec §4 rather than fed to the JSON decoder.
func (s *Session) readLoop(ctx context.Context, done chan<- error) {
	defer func() { done <- nil }()

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			done <- fmt.Errorf("read: %w", err)
			return
		}

		if messageType == websocket.BinaryMessage {
			s.log.Warn("ignoring binary frame")
			continue
		}

		msg, err := Decode(data)
		if err != nil {
			var unknown ErrUnknownType
			if errors.As(err, &unknown) {
				s.log.Warn("unknown message type", zap.String("type", string(unknown.Type)))
				continue
			}
			s.sendError(ctx, "malformed message")
			continue
		}

		if reply, ok := s.router.Handle(ctx, s.user, msg); ok {
			s.enqueue(reply)
		}
	}
}

// busLoop forwards deliverable messages received on this user's presence
// channel straight to the outbound queue.
func (s *Session) busLoop(ctx context.Context, done chan<- error) {
	defer func() { done <- nil }()

	for {
		data, err := s.sub.Receive(ctx)
		if err != nil {
			done <- nil
			return
		}

		msg, err := Decode(data)
		if err != nil {
			continue
		}
		if !DeliverableFromBus(msg.Type) {
			continue
		}
		s.enqueue(data)
	}
}

// writeLoop is the single goroutine that ever calls conn.WriteMessage.
func (s *Session) writeLoop(ctx context.Context, done chan<- error) {
	defer func() { done <- nil }()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-s.outbound:
			if !ok {
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				done <- fmt.Errorf("write: %w", err)
				return
			}
		}
	}
}

// enqueue drops the message rather than blocking if the outbound queue is
// full — a stuck client shouldn't stall the router or the bus loop.
func (s *Session) enqueue(data []byte) {
	select {
	case s.outbound <- data:
	default:
		s.log.Warn("outbound queue full, dropping message")
	}
}

func (s *Session) sendError(ctx context.Context, message string) {
	data, err := EncodeError(message)
	if err != nil {
		return
	}
	s.enqueue(data)
}
