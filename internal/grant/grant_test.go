package grant

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testAPIKey    = "test-key"
	testAPISecret = "test-secret-at-least-32-bytes-long"
)

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testAPISecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token not valid")
	}
	return claims
}

func TestIssueCallTokensShape(t *testing.T) {
	issuer := NewIssuer(testAPIKey, testAPISecret)

	video, audio, err := issuer.IssueCallTokens(context.Background(), "call-room-1", "user-1", "Ada")
	if err != nil {
		t.Fatalf("IssueCallTokens: %v", err)
	}
	if video == "" || audio == "" {
		t.Fatal("expected non-empty tokens")
	}
	if video == audio {
		t.Fatal("video and audio tokens must differ (distinct identities)")
	}

	videoClaims := parseClaims(t, video)
	if videoClaims["sub"] != "room:call-room-1:user-1:video" {
		t.Fatalf("video sub = %v, want room:call-room-1:user-1:video", videoClaims["sub"])
	}
	if videoClaims["name"] != "Ada video" {
		t.Fatalf("video name = %v, want %q (display name, not raw ID)", videoClaims["name"], "Ada video")
	}

	audioClaims := parseClaims(t, audio)
	if audioClaims["sub"] != "room:call-room-1:user-1:audio" {
		t.Fatalf("audio sub = %v, want room:call-room-1:user-1:audio", audioClaims["sub"])
	}

	exp, ok := videoClaims["exp"].(float64)
	if !ok {
		t.Fatal("expected exp claim on video token")
	}
	gotTTL := time.Until(time.Unix(int64(exp), 0))
	if gotTTL < CallGrantTTL-time.Minute || gotTTL > CallGrantTTL {
		t.Fatalf("video token ttl = %v, want ~%v", gotTTL, CallGrantTTL)
	}
}

func TestIssueWatercoolerTokensShape(t *testing.T) {
	issuer := NewIssuer(testAPIKey, testAPISecret)

	video, audio, err := issuer.IssueWatercoolerTokens(context.Background(), "team-1-watercooler", "user-2", "Ada")
	if err != nil {
		t.Fatalf("IssueWatercoolerTokens: %v", err)
	}
	if video == "" || audio == "" {
		t.Fatal("expected non-empty tokens")
	}

	claims := parseClaims(t, audio)
	if claims["sub"] != "room:team-1-watercooler:user-2:audio" {
		t.Fatalf("sub = %v, want room:team-1-watercooler:user-2:audio", claims["sub"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("expected exp claim")
	}
	gotTTL := time.Until(time.Unix(int64(exp), 0))
	if gotTTL < CallGrantTTL-time.Minute || gotTTL > CallGrantTTL {
		t.Fatalf("watercooler token ttl = %v, want ~%v", gotTTL, CallGrantTTL)
	}
}

func TestIssueMeetRedirectTokenShape(t *testing.T) {
	issuer := NewIssuer(testAPIKey, testAPISecret)

	audio, err := issuer.IssueMeetRedirectToken(context.Background(), "team-1-watercooler", "anonymous-ab12")
	if err != nil {
		t.Fatalf("IssueMeetRedirectToken: %v", err)
	}

	claims := parseClaims(t, audio)
	if claims["sub"] != "room:team-1-watercooler:anonymous-ab12:audio" {
		t.Fatalf("sub = %v, want room:team-1-watercooler:anonymous-ab12:audio", claims["sub"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("expected exp claim")
	}
	gotTTL := time.Until(time.Unix(int64(exp), 0))
	if gotTTL < WatercoolerGrantTTL-time.Minute || gotTTL > WatercoolerGrantTTL {
		t.Fatalf("meet-redirect token ttl = %v, want ~%v", gotTTL, WatercoolerGrantTTL)
	}
}
