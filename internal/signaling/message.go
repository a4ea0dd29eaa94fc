// Package signaling implements the call-setup wire protocol and the
// per-connection machinery built on top of it: the message codec (C2), the
// Session (C3), the Router (C4) and the Call Coordinator (C5).
package signaling

import (
	"encoding/json"
	"fmt"
)

// Type is the wire discriminator for a signaling message. Adding a variant
// touches this file (encoder/decoder and the busDeliverable bus-loop
// filter) and router.go (the dispatch switch in Router.Handle) — spec §9
// calls this co-location out explicitly, so all of it stays in this package.
type Type string

const (
	TypeSuccess         Type = "success"
	TypeError           Type = "error"
	TypePing            Type = "ping"
	TypePong            Type = "pong"
	TypeCallRequest     Type = "call_request"
	TypeIncomingCall    Type = "incoming_call"
	TypeCalleeOffline   Type = "callee_offline"
	TypeCallAccept      Type = "call_accept"
	TypeCallReject      Type = "call_reject"
	TypeCallTokens      Type = "call_tokens"
	TypeCallEnd         Type = "call_end"
	TypeTeammateOnline  Type = "teammate_online"
)

// envelope is the common shape every message decodes through first —
// json.RawMessage delays parsing the payload until Type tells us its shape.
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type SuccessPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type PingPayload struct {
	Message string `json:"message"`
}

type PongPayload struct {
	Message string `json:"message"`
}

type CallRequestPayload struct {
	CalleeID string `json:"callee_id"`
}

type IncomingCallPayload struct {
	CallerID string `json:"caller_id"`
}

type CalleeOfflinePayload struct {
	CalleeID string `json:"callee_id"`
}

type CallAcceptPayload struct {
	CallerID string `json:"caller_id"`
}

type CallRejectPayload struct {
	CallerID string `json:"caller_id"`
}

type CallTokensPayload struct {
	AudioToken  string `json:"audioToken"`
	VideoToken  string `json:"videoToken"`
	Participant string `json:"participant"`
}

type CallEndPayload struct {
	ParticipantID string `json:"participant_id"`
}

type TeammateOnlinePayload struct {
	TeammateID string `json:"teammate_id"`
}

// Message is a single decoded signaling message: Type tells you which of
// the payload fields is populated. Only one of the pointer-shaped payloads
// below is used per Type — see Decode.
type Message struct {
	Type Type `json:"type"`

	Success        *SuccessPayload        `json:"-"`
	Error          *ErrorPayload          `json:"-"`
	Ping           *PingPayload           `json:"-"`
	Pong           *PongPayload           `json:"-"`
	CallRequest    *CallRequestPayload    `json:"-"`
	IncomingCall   *IncomingCallPayload   `json:"-"`
	CalleeOffline  *CalleeOfflinePayload  `json:"-"`
	CallAccept     *CallAcceptPayload     `json:"-"`
	CallReject     *CallRejectPayload     `json:"-"`
	CallTokens     *CallTokensPayload     `json:"-"`
	CallEnd        *CallEndPayload        `json:"-"`
	TeammateOnline *TeammateOnlinePayload `json:"-"`
}

// ErrUnknownType is returned by Decode for a syntactically valid envelope
// whose type isn't one of the enumerated tags. Per spec §4.2 this is not a
// fatal error — the caller should warn and continue, not disconnect.
type ErrUnknownType struct {
	Type Type
}

func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown message type: %s", e.Type)
}

// Decode parses a wire message. Returns an ErrUnknownType value for a
// recognized envelope with an unrecognized type; returns a plain error for
// malformed JSON.
func Decode(data []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	msg := &Message{Type: env.Type}

	switch env.Type {
	case TypeSuccess:
		msg.Success = new(SuccessPayload)
		return msg, unmarshalPayload(env.Payload, msg.Success)
	case TypeError:
		msg.Error = new(ErrorPayload)
		return msg, unmarshalPayload(env.Payload, msg.Error)
	case TypePing:
		msg.Ping = new(PingPayload)
		return msg, unmarshalPayload(env.Payload, msg.Ping)
	case TypePong:
		msg.Pong = new(PongPayload)
		return msg, unmarshalPayload(env.Payload, msg.Pong)
	case TypeCallRequest:
		msg.CallRequest = new(CallRequestPayload)
		return msg, unmarshalPayload(env.Payload, msg.CallRequest)
	case TypeIncomingCall:
		msg.IncomingCall = new(IncomingCallPayload)
		return msg, unmarshalPayload(env.Payload, msg.IncomingCall)
	case TypeCalleeOffline:
		msg.CalleeOffline = new(CalleeOfflinePayload)
		return msg, unmarshalPayload(env.Payload, msg.CalleeOffline)
	case TypeCallAccept:
		msg.CallAccept = new(CallAcceptPayload)
		return msg, unmarshalPayload(env.Payload, msg.CallAccept)
	case TypeCallReject:
		msg.CallReject = new(CallRejectPayload)
		return msg, unmarshalPayload(env.Payload, msg.CallReject)
	case TypeCallTokens:
		msg.CallTokens = new(CallTokensPayload)
		return msg, unmarshalPayload(env.Payload, msg.CallTokens)
	case TypeCallEnd:
		msg.CallEnd = new(CallEndPayload)
		return msg, unmarshalPayload(env.Payload, msg.CallEnd)
	case TypeTeammateOnline:
		msg.TeammateOnline = new(TeammateOnlinePayload)
		return msg, unmarshalPayload(env.Payload, msg.TeammateOnline)
	default:
		return nil, ErrUnknownType{Type: env.Type}
	}
}

func unmarshalPayload(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// Encode helpers — one constructor + one JSON encoding per tag, so the
// caller never hand-assembles an envelope{Type, Payload} pair.

func encode(t Type, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return json.Marshal(envelope{Type: t, Payload: raw})
}

func EncodeSuccess(message string) ([]byte, error) {
	return encode(TypeSuccess, SuccessPayload{Message: message})
}

func EncodeError(message string) ([]byte, error) {
	return encode(TypeError, ErrorPayload{Error: message})
}

func EncodePong() ([]byte, error) {
	return encode(TypePong, PongPayload{Message: "pong"})
}

func EncodeIncomingCall(callerID string) ([]byte, error) {
	return encode(TypeIncomingCall, IncomingCallPayload{CallerID: callerID})
}

func EncodeCalleeOffline(calleeID string) ([]byte, error) {
	return encode(TypeCalleeOffline, CalleeOfflinePayload{CalleeID: calleeID})
}

func EncodeCallAccept(callerID string) ([]byte, error) {
	return encode(TypeCallAccept, CallAcceptPayload{CallerID: callerID})
}

func EncodeCallReject(callerID string) ([]byte, error) {
	return encode(TypeCallReject, CallRejectPayload{CallerID: callerID})
}

func EncodeCallTokens(payload CallTokensPayload) ([]byte, error) {
	return encode(TypeCallTokens, payload)
}

func EncodeCallEnd(participantID string) ([]byte, error) {
	return encode(TypeCallEnd, CallEndPayload{ParticipantID: participantID})
}

func EncodeTeammateOnline(teammateID string) ([]byte, error) {
	return encode(TypeTeammateOnline, TeammateOnlinePayload{TeammateID: teammateID})
}

// busDeliverable is the set of types the bus loop forwards to the
// WebSocket, per spec §4.3's bus-loop contract. Every other type received
// on the bus is ignored.
var busDeliverable = map[Type]bool{
	TypeIncomingCall:   true,
	TypeCallReject:     true,
	TypeCallAccept:     true,
	TypeCallTokens:     true,
	TypeCallEnd:        true,
	TypeTeammateOnline: true,
}

// DeliverableFromBus reports whether a message received on a user's
// presence channel should be forwarded to their WebSocket.
func DeliverableFromBus(t Type) bool {
	return busDeliverable[t]
}
