package signaling

import (
	"errors"
	"testing"
)

func TestDecodeRoundTrip(t *testing.T) {
	data, err := EncodeIncomingCall("caller-1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeIncomingCall {
		t.Fatalf("Type = %v, want %v", msg.Type, TypeIncomingCall)
	}
	if msg.IncomingCall == nil || msg.IncomingCall.CallerID != "caller-1" {
		t.Fatalf("IncomingCall = %+v, want CallerID caller-1", msg.IncomingCall)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"not_a_real_type","payload":{}}`))
	var unknown ErrUnknownType
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if unknown.Type != "not_a_real_type" {
		t.Fatalf("Type = %q, want not_a_real_type", unknown.Type)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var unknown ErrUnknownType
	if errors.As(err, &unknown) {
		t.Fatal("malformed JSON should not decode as ErrUnknownType")
	}
}

func TestDecodeCallRequest(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"call_request","payload":{"callee_id":"u2"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.CallRequest == nil || msg.CallRequest.CalleeID != "u2" {
		t.Fatalf("CallRequest = %+v, want CalleeID u2", msg.CallRequest)
	}
}

func TestDeliverableFromBus(t *testing.T) {
	cases := []struct {
		typ  Type
		want bool
	}{
		{TypeIncomingCall, true},
		{TypeCallTokens, true},
		{TypeCallEnd, true},
		{TypeCallReject, true},
		{TypeTeammateOnline, true},
		{TypeCallRequest, false},
		{TypePing, false},
		{TypeSuccess, false},
	}
	for _, tc := range cases {
		if got := DeliverableFromBus(tc.typ); got != tc.want {
			t.Errorf("DeliverableFromBus(%v) = %v, want %v", tc.typ, got, tc.want)
		}
	}
}
