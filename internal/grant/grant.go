// Package grant implements the Token Issuer (C6): signing LiveKit-shaped
// media grants for a call room and the shorter-lived audio-only grant used
// by the anonymous watercooler redirect flow.
package grant

import (
	"context"
	"fmt"
	"time"

	livekitauth "github.com/livekit/protocol/auth"
)

// CallGrantTTL is how long a call's media grants stay valid. Calls are
// expected to be short; 24 hours is generous headroom rather than a
// realistic call length, matching the original implementation.
const CallGrantTTL = 24 * time.Hour

// WatercoolerGrantTTL bounds the anonymous watercooler guest's media grant
// (IssueMeetRedirectToken). Authenticated watercooler grants use
// CallGrantTTL.
const WatercoolerGrantTTL = 3 * time.Hour

// Issuer signs LiveKit access tokens with the SFU's API key/secret pair.
type Issuer struct {
	apiKey    string
	apiSecret string
}

// NewIssuer builds an Issuer from SFU credentials.
func NewIssuer(apiKey, apiSecret string) *Issuer {
	return &Issuer{apiKey: apiKey, apiSecret: apiSecret}
}

// IssueCallTokens mints a video and an audio grant for one participant in
// roomID, each scoped to join that room only and named after the
// participant's display name, not their raw ID. Implements
// signaling.TokenIssuer.
func (i *Issuer) IssueCallTokens(ctx context.Context, roomID, participantID, displayName string) (videoToken, audioToken string, err error) {
	video, err := i.grant(roomID, videoIdentity(roomID, participantID), displayName+" video", CallGrantTTL)
	if err != nil {
		return "", "", fmt.Errorf("creating video token: %w", err)
	}
	audio, err := i.grant(roomID, audioIdentity(roomID, participantID), displayName+" audio", CallGrantTTL)
	if err != nil {
		return "", "", fmt.Errorf("creating audio token: %w", err)
	}
	return video, audio, nil
}

// IssueWatercoolerTokens mints a full video+audio grant pair for the team's
// always-on watercooler room, for the authenticated /api/auth/watercooler
// endpoint. Same TTL as a call grant — the watercooler is always-available,
// not a short redirect hop.
func (i *Issuer) IssueWatercoolerTokens(ctx context.Context, roomID, participantID, displayName string) (videoToken, audioToken string, err error) {
	video, err := i.grant(roomID, videoIdentity(roomID, participantID), displayName+" video", CallGrantTTL)
	if err != nil {
		return "", "", fmt.Errorf("creating video token: %w", err)
	}
	audio, err := i.grant(roomID, audioIdentity(roomID, participantID), displayName+" audio", CallGrantTTL)
	if err != nil {
		return "", "", fmt.Errorf("creating audio token: %w", err)
	}
	return video, audio, nil
}

// IssueMeetRedirectToken mints a single audio-only, short-lived grant for
// the anonymous watercooler redirect flow (spec §6.4): the invited guest
// never authenticates, so they get the minimum grant needed to join.
func (i *Issuer) IssueMeetRedirectToken(ctx context.Context, roomID, participantID string) (audioToken string, err error) {
	audio, err := i.grant(roomID, audioIdentity(roomID, participantID), participantID+" audio", WatercoolerGrantTTL)
	if err != nil {
		return "", fmt.Errorf("creating audio token: %w", err)
	}
	return audio, nil
}

func (i *Issuer) grant(roomID, identity, name string, ttl time.Duration) (string, error) {
	token := livekitauth.NewAccessToken(i.apiKey, i.apiSecret).
		SetIdentity(identity).
		SetValidFor(ttl).
		SetName(name).
		SetVideoGrant(&livekitauth.VideoGrant{
			RoomJoin: true,
			Room:     roomID,
		})

	jwt, err := token.ToJWT()
	if err != nil {
		return "", err
	}
	return jwt, nil
}

func videoIdentity(roomID, participantID string) string {
	return fmt.Sprintf("room:%s:%s:video", roomID, participantID)
}

func audioIdentity(roomID, participantID string) string {
	return fmt.Sprintf("room:%s:%s:audio", roomID, participantID)
}
