package signaling

import (
	"context"

	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/bus"
	"github.com/pairhub/signalhub/internal/models"
	"github.com/pairhub/signalhub/internal/presence"
	"github.com/pairhub/signalhub/internal/repository"
)

// Router dispatches a decoded client message to the right side effect:
// a direct reply to the sender, a publish onto another user's presence
// channel, or both. It holds no per-connection state — every method takes
// the acting user explicitly, so one Router instance is shared by every
// Session in the process.
type Router struct {
	presence    *presence.Registry
	bus         bus.Bus
	users       repository.UserRepository
	coordinator *Coordinator
	log         *zap.Logger
}

// NewRouter builds a Router. coordinator may be nil only in tests that don't
// exercise call_accept.
func NewRouter(reg *presence.Registry, b bus.Bus, users repository.UserRepository, coordinator *Coordinator, log *zap.Logger) *Router {
	return &Router{presence: reg, bus: b, users: users, coordinator: coordinator, log: log}
}

// Handle processes one decoded message from user and reports a direct reply
// to send back to the sender's own connection, if any. Side effects
// published to other users' channels happen inside Handle and are not
// reflected in the return value.
func (r *Router) Handle(ctx context.Context, user models.User, msg *Message) ([]byte, bool) {
	switch msg.Type {
	case TypePing:
		reply, err := EncodePong()
		if err != nil {
			return nil, false
		}
		return reply, true

	case TypeCallRequest:
		return r.handleCallRequest(ctx, user, msg.CallRequest)

	case TypeCallAccept:
		return r.handleCallAccept(ctx, user, msg.CallAccept)

	case TypeCallReject:
		return r.handleCallReject(ctx, user, msg.CallReject)

	case TypeCallEnd:
		return r.handleCallEnd(ctx, user, msg.CallEnd)

	default:
		r.log.Debug("no handler for message type", zap.String("type", string(msg.Type)))
		return nil, false
	}
}

// handleCallRequest implements spec §4.1/§4.4's offline short-circuit: if
// the callee has no live session anywhere in the cluster, the caller is
// told immediately instead of ringing a phone nobody will answer.
func (r *Router) handleCallRequest(ctx context.Context, caller models.User, payload *CallRequestPayload) ([]byte, bool) {
	if payload == nil {
		return nil, false
	}

	online, err := r.presence.IsPresent(ctx, payload.CalleeID)
	if err != nil {
		r.log.Error("presence check failed", zap.Error(err))
		reply, _ := EncodeCalleeOffline(payload.CalleeID)
		return reply, true
	}
	if !online {
		reply, err := EncodeCalleeOffline(payload.CalleeID)
		if err != nil {
			return nil, false
		}
		return reply, true
	}

	notify, err := EncodeIncomingCall(caller.ID.String())
	if err != nil {
		r.log.Error("encode incoming_call", zap.Error(err))
		return nil, false
	}
	if err := r.bus.Publish(ctx, presence.Channel(payload.CalleeID), notify); err != nil {
		r.log.Error("publish incoming_call", zap.Error(err))
		reply, _ := EncodeError("could not reach callee")
		return reply, true
	}
	return nil, false
}

// handleCallAccept delegates to the Call Coordinator, which mints media
// grants for both participants and publishes call_accept and call_tokens to
// each of their channels. The accepting session gets its own tokens back
// through its own bus subscription like every other session, not as a
// direct reply — a duplicate session for the same user must see them too.
func (r *Router) handleCallAccept(ctx context.Context, callee models.User, payload *CallAcceptPayload) ([]byte, bool) {
	if payload == nil || r.coordinator == nil {
		return nil, false
	}

	if err := r.coordinator.Accept(ctx, callee, payload.CallerID); err != nil {
		r.log.Error("call accept failed", zap.Error(err))
		reply, _ := EncodeError("could not set up call")
		return reply, true
	}
	return nil, false
}

// handleCallReject forwards the rejection to the caller's channel unchanged,
// exactly as spec §4.3/§4.5 describe: the server is stateless, so it trusts
// the payload's caller_id and republishes it verbatim without consulting
// any setup table.
func (r *Router) handleCallReject(ctx context.Context, callee models.User, payload *CallRejectPayload) ([]byte, bool) {
	if payload == nil {
		return nil, false
	}
	notify, err := EncodeCallReject(payload.CallerID)
	if err != nil {
		return nil, false
	}
	if err := r.bus.Publish(ctx, presence.Channel(payload.CallerID), notify); err != nil {
		r.log.Error("publish call_reject", zap.Error(err))
	}
	return nil, false
}

// handleCallEnd forwards a hangup to the other participant unchanged. Per
// DESIGN.md's Open Question 3, this is intentionally unauthenticated
// against the Coordinator's active-call table — the client names who to
// notify, and the router trusts it, matching the original implementation.
// The table is consulted afterwards only to close out the Call Record.
func (r *Router) handleCallEnd(ctx context.Context, ender models.User, payload *CallEndPayload) ([]byte, bool) {
	if payload == nil {
		return nil, false
	}
	notify, err := EncodeCallEnd(payload.ParticipantID)
	if err != nil {
		return nil, false
	}
	if err := r.bus.Publish(ctx, presence.Channel(payload.ParticipantID), notify); err != nil {
		r.log.Error("publish call_end", zap.Error(err))
	}
	if r.coordinator != nil {
		r.coordinator.MarkEnded(ctx, ender.ID.String(), payload.ParticipantID)
	}
	return nil, false
}

// announceOnline publishes a teammate_online event to every member of
// user's team so their already-connected clients can light up presence
// without polling.
func (r *Router) announceOnline(ctx context.Context, user models.User) {
	if r.users == nil {
		return
	}
	teammates, err := r.users.ListTeammates(ctx, user.TeamID, user.ID)
	if err != nil {
		r.log.Error("list teammates", zap.Error(err))
		return
	}

	notify, err := EncodeTeammateOnline(user.ID.String())
	if err != nil {
		return
	}
	for _, mate := range teammates {
		if err := r.bus.Publish(ctx, presence.Channel(mate.ID.String()), notify); err != nil {
			r.log.Warn("publish teammate_online", zap.String("teammate_id", mate.ID.String()), zap.Error(err))
		}
	}
}
