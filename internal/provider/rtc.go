// Package provider issues credentials for the external voice transport.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/riftcall/riftcall/internal/domain"
)

var ErrNotConfigured = errors.New("provider app id not configured")

// RTCTokenService mints channel-session credentials and per-identity join
// tokens for the voice provider. With no certificate configured it runs in
// app-id-only mode and issues empty tokens, which the provider accepts when
// that mode is enabled in its console.
type RTCTokenService struct {
	appID       string
	certificate string
	ttl         time.Duration
	now         func() time.Time
}

func NewRTCTokenService(appID, certificate string, ttl time.Duration) *RTCTokenService {
	return &RTCTokenService{
		appID:       appID,
		certificate: certificate,
		ttl:         ttl,
		now:         time.Now,
	}
}

// ChannelSession produces the immutable provider metadata stamped on a
// channel at creation. It respects ctx so a resolution timeout aborts
// creation cleanly.
func (s *RTCTokenService) ChannelSession(ctx context.Context, ch domain.ChannelID) (domain.ProviderSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProviderSession{}, err
	}
	if s.appID == "" {
		return domain.ProviderSession{}, ErrNotConfigured
	}
	cred, err := s.sign(ch, "")
	if err != nil {
		return domain.ProviderSession{}, err
	}
	return domain.ProviderSession{AppID: s.appID, Credential: cred}, nil
}

// JoinToken mints a token scoped to one identity in one channel.
func (s *RTCTokenService) JoinToken(ch domain.ChannelID, uid domain.UserID) (string, error) {
	return s.sign(ch, uid)
}

func (s *RTCTokenService) sign(ch domain.ChannelID, uid domain.UserID) (string, error) {
	if s.certificate == "" {
		return "", nil // app-id-only mode
	}
	now := s.now()
	claims := jwt.MapClaims{
		"app": s.appID,
		"ch":  string(ch),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	if uid != "" {
		claims["uid"] = string(uid)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(s.certificate))
}
