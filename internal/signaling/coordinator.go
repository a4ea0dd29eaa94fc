package signaling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/bus"
	"github.com/pairhub/signalhub/internal/models"
	"github.com/pairhub/signalhub/internal/presence"
	"github.com/pairhub/signalhub/internal/repository"
)

// TokenIssuer mints the media grants a Call Coordinator hands out on
// accept. Implemented by internal/grant.
type TokenIssuer interface {
	IssueCallTokens(ctx context.Context, roomID, participantID, displayName string) (videoToken, audioToken string, err error)
}

// callKey is an unordered pair of participant IDs — the caller and callee
// end up on the same key regardless of who names whom.
type callKey [2]string

func newCallKey(a, b string) callKey {
	if a > b {
		a, b = b, a
	}
	return callKey{a, b}
}

// activeCall is the coordinator's only server-side call state, kept purely
// so a later call_end can find the room to close out in the Call Record —
// it plays no role in accept/reject, which stay fully stateless per spec
// §4.5. This mirrors the original implementation's ServerState, scoped down
// to the one thing this hub still needs it for.
type activeCall struct {
	roomID    string
	teamID    uuid.UUID
	callerID  uuid.UUID
	calleeID  uuid.UUID
	startedAt time.Time
}

// Coordinator implements the call-accept half of the protocol: minting a
// room and media grants for both participants and recording the call.
type Coordinator struct {
	issuer TokenIssuer
	users  repository.UserRepository
	calls  repository.CallRecordRepository
	bus    bus.Bus
	log    *zap.Logger

	mu     sync.Mutex
	active map[callKey]activeCall
}

// NewCoordinator builds a Coordinator. calls may be nil to skip persistence
// (used by tests that only care about token delivery).
func NewCoordinator(issuer TokenIssuer, users repository.UserRepository, calls repository.CallRecordRepository, b bus.Bus, log *zap.Logger) *Coordinator {
	return &Coordinator{
		issuer: issuer,
		users:  users,
		calls:  calls,
		bus:    b,
		log:    log,
		active: make(map[callKey]activeCall),
	}
}

// Accept mints a fresh room and a pair of media grants for each
// participant, delivers every message over the bus to its own
// channel-user-<id> — never as a direct reply to the accepting session —
// so every session subscribed to that channel receives it, per spec §3's
// bus-delivery invariant. Per DESIGN.md's Open Question 1, this never
// checks for a prior call_request — the client is trusted to only send
// call_accept in response to a real incoming_call.
func (c *Coordinator) Accept(ctx context.Context, callee models.User, callerID string) error {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return fmt.Errorf("parse caller id: %w", err)
	}
	caller, err := c.users.GetByID(ctx, callerUUID)
	if err != nil {
		return fmt.Errorf("look up caller: %w", err)
	}
	if caller == nil {
		return fmt.Errorf("caller %s not found", callerID)
	}

	// Step 1: forward call_accept to the caller's channel unchanged, exactly
	// as received, so A sees the acceptance before any tokens arrive (spec
	// §4.5 step 1).
	acceptMsg, err := EncodeCallAccept(callerID)
	if err != nil {
		return fmt.Errorf("encode call_accept: %w", err)
	}
	if err := c.bus.Publish(ctx, presence.Channel(callerID), acceptMsg); err != nil {
		c.log.Error("publish call_accept to caller", zap.Error(err))
	}

	roomID := "call-" + uuid.NewString()

	callerVideo, callerAudio, err := c.issuer.IssueCallTokens(ctx, roomID, callerID, caller.DisplayName)
	if err != nil {
		return fmt.Errorf("issue caller tokens: %w", err)
	}
	calleeVideo, calleeAudio, err := c.issuer.IssueCallTokens(ctx, roomID, callee.ID.String(), callee.DisplayName)
	if err != nil {
		return fmt.Errorf("issue callee tokens: %w", err)
	}

	callerMsg, err := EncodeCallTokens(CallTokensPayload{
		VideoToken:  callerVideo,
		AudioToken:  callerAudio,
		Participant: callerID,
	})
	if err != nil {
		return fmt.Errorf("encode caller tokens: %w", err)
	}
	calleeMsg, err := EncodeCallTokens(CallTokensPayload{
		VideoToken:  calleeVideo,
		AudioToken:  calleeAudio,
		Participant: callee.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("encode callee tokens: %w", err)
	}

	if err := c.bus.Publish(ctx, presence.Channel(callerID), callerMsg); err != nil {
		c.log.Error("publish call_tokens to caller", zap.Error(err))
	}
	if err := c.bus.Publish(ctx, presence.Channel(callee.ID.String()), calleeMsg); err != nil {
		c.log.Error("publish call_tokens to callee", zap.Error(err))
	}

	call := activeCall{
		roomID:    roomID,
		teamID:    caller.TeamID,
		callerID:  callerUUID,
		calleeID:  callee.ID,
		startedAt: time.Now(),
	}
	c.mu.Lock()
	c.active[newCallKey(callerID, callee.ID.String())] = call
	c.mu.Unlock()

	if c.calls != nil {
		if _, err := c.calls.Create(ctx, call.teamID, call.callerID, call.calleeID, call.roomID); err != nil {
			c.log.Error("record call start", zap.Error(err))
		}
	}

	return nil
}

// MarkEnded closes out the call record for the pair (ender, other), if the
// coordinator has one on file. A missing entry is not an error — the call
// may have been accepted before this process started, or already ended.
func (c *Coordinator) MarkEnded(ctx context.Context, ender, other string) {
	key := newCallKey(ender, other)

	c.mu.Lock()
	call, ok := c.active[key]
	if ok {
		delete(c.active, key)
	}
	c.mu.Unlock()

	if !ok || c.calls == nil {
		return
	}
	if err := c.calls.MarkEnded(ctx, call.roomID, time.Now()); err != nil {
		c.log.Error("record call end", zap.Error(err))
	}
}
