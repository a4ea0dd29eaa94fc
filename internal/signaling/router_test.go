package signaling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/bus"
	"github.com/pairhub/signalhub/internal/models"
	"github.com/pairhub/signalhub/internal/presence"
)

func newTestUser(teamID uuid.UUID) models.User {
	return models.User{
		ID:          uuid.New(),
		TeamID:      teamID,
		Email:       uuid.NewString() + "@example.com",
		DisplayName: "Test User",
	}
}

func TestHandleCallRequestOfflineShortCircuit(t *testing.T) {
	b := bus.NewMemory()
	reg := presence.NewRegistry(b)
	router := NewRouter(reg, b, nil, nil, zap.NewNop())

	caller := newTestUser(uuid.New())
	reply, ok := router.Handle(context.Background(), caller, &Message{
		Type:        TypeCallRequest,
		CallRequest: &CallRequestPayload{CalleeID: "offline-user"},
	})
	if !ok {
		t.Fatal("expected a direct reply for an offline callee")
	}
	got, err := Decode(reply)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if got.Type != TypeCalleeOffline {
		t.Fatalf("reply type = %v, want %v", got.Type, TypeCalleeOffline)
	}
	if got.CalleeOffline.CalleeID != "offline-user" {
		t.Fatalf("CalleeID = %q, want offline-user", got.CalleeOffline.CalleeID)
	}
}

func TestHandleCallRequestRingsOnlineCallee(t *testing.T) {
	b := bus.NewMemory()
	reg := presence.NewRegistry(b)
	router := NewRouter(reg, b, nil, nil, zap.NewNop())

	callee := newTestUser(uuid.New())
	sub := reg.Subscribe(context.Background(), callee.ID.String())
	defer sub.Close()

	caller := newTestUser(callee.TeamID)
	reply, ok := router.Handle(context.Background(), caller, &Message{
		Type:        TypeCallRequest,
		CallRequest: &CallRequestPayload{CalleeID: callee.ID.String()},
	})
	if ok {
		t.Fatalf("expected no direct reply, got %s", reply)
	}

	rctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, err := sub.Receive(rctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeIncomingCall {
		t.Fatalf("Type = %v, want %v", msg.Type, TypeIncomingCall)
	}
	if msg.IncomingCall.CallerID != caller.ID.String() {
		t.Fatalf("CallerID = %q, want %q", msg.IncomingCall.CallerID, caller.ID.String())
	}
}

func TestHandleCallRejectForwardsToCaller(t *testing.T) {
	b := bus.NewMemory()
	reg := presence.NewRegistry(b)
	router := NewRouter(reg, b, nil, nil, zap.NewNop())

	callerID := uuid.NewString()
	sub := reg.Subscribe(context.Background(), callerID)
	defer sub.Close()

	callee := newTestUser(uuid.New())
	_, ok := router.Handle(context.Background(), callee, &Message{
		Type:       TypeCallReject,
		CallReject: &CallRejectPayload{CallerID: callerID},
	})
	if ok {
		t.Fatal("call_reject should never produce a direct reply")
	}

	rctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, err := sub.Receive(rctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeCallReject || msg.CallReject.CallerID != callerID {
		t.Fatalf("got %+v, want call_reject forwarded unchanged with caller_id %s", msg, callerID)
	}
}

func TestHandleCallEndForwardsToParticipant(t *testing.T) {
	b := bus.NewMemory()
	reg := presence.NewRegistry(b)
	router := NewRouter(reg, b, nil, nil, zap.NewNop())

	otherID := uuid.NewString()
	sub := reg.Subscribe(context.Background(), otherID)
	defer sub.Close()

	ender := newTestUser(uuid.New())
	_, ok := router.Handle(context.Background(), ender, &Message{
		Type:    TypeCallEnd,
		CallEnd: &CallEndPayload{ParticipantID: otherID},
	})
	if ok {
		t.Fatal("call_end should never produce a direct reply")
	}

	rctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, err := sub.Receive(rctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeCallEnd || msg.CallEnd.ParticipantID != otherID {
		t.Fatalf("got %+v, want call_end forwarded unchanged with participant_id %s", msg, otherID)
	}
}

func TestHandlePingRepliesPong(t *testing.T) {
	b := bus.NewMemory()
	reg := presence.NewRegistry(b)
	router := NewRouter(reg, b, nil, nil, zap.NewNop())

	reply, ok := router.Handle(context.Background(), newTestUser(uuid.New()), &Message{Type: TypePing})
	if !ok {
		t.Fatal("expected a direct pong reply")
	}
	msg, err := Decode(reply)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypePong {
		t.Fatalf("Type = %v, want %v", msg.Type, TypePong)
	}
}

func TestAnnounceOnlineNotifiesTeammates(t *testing.T) {
	b := bus.NewMemory()
	reg := presence.NewRegistry(b)

	teamID := uuid.New()
	user := newTestUser(teamID)
	mate := newTestUser(teamID)
	users := &fakeUserRepo{users: []models.User{user, mate}}

	router := NewRouter(reg, b, users, nil, zap.NewNop())

	sub := reg.Subscribe(context.Background(), mate.ID.String())
	defer sub.Close()

	router.announceOnline(context.Background(), user)

	rctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, err := sub.Receive(rctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeTeammateOnline || msg.TeammateOnline.TeammateID != user.ID.String() {
		t.Fatalf("got %+v, want teammate_online naming %s", msg, user.ID.String())
	}
}
