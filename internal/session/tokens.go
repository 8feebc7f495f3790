package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gaia-console/gaia/pkg/domain"
)

// SaveTokens persists the token pair issued by a sign-in.
func SaveTokens(s Store, t domain.AuthTokens) error {
	if err := s.Set(KeyAccessToken, t.AccessToken); err != nil {
		return fmt.Errorf("session.SaveTokens: %w", err)
	}
	if err := s.Set(KeyRefreshToken, t.RefreshToken); err != nil {
		return fmt.Errorf("session.SaveTokens: %w", err)
	}
	return nil
}

// Tokens returns the stored token pair. ok is false when no access token is stored.
func Tokens(s Store) (t domain.AuthTokens, ok bool, err error) {
	access, ok, err := s.Get(KeyAccessToken)
	if err != nil || !ok || access == "" {
		return domain.AuthTokens{}, false, err
	}
	refresh, _, err := s.Get(KeyRefreshToken)
	if err != nil {
		return domain.AuthTokens{}, false, err
	}
	return domain.AuthTokens{AccessToken: access, RefreshToken: refresh}, true, nil
}

// ClearTokens signs the client out.
func ClearTokens(s Store) error {
	return errors.Join(s.Clear(KeyAccessToken), s.Clear(KeyRefreshToken))
}

// SetRedirect records where to go after the next successful sign-in.
func SetRedirect(s Store, target string) error {
	return s.Set(KeyRedirect, target)
}

// TakeRedirect returns the deferred redirect and clears it, so it is used at
// most once.
func TakeRedirect(s Store) (string, bool, error) {
	target, ok, err := s.Get(KeyRedirect)
	if err != nil || !ok {
		return "", false, err
	}
	if err := s.Clear(KeyRedirect); err != nil {
		return "", false, err
	}
	return target, target != "", nil
}

// Identity is what the console's access token says about its holder.
type Identity struct {
	AccountID uuid.UUID
	ExpiresAt time.Time
}

// Expired reports whether the token has expired at now. A token without an
// expiry never expires.
func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && !now.Before(id.ExpiresAt)
}

type accessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// InspectAccessToken decodes the claims of a console access token without
// verifying its signature; only the server can do that.
func InspectAccessToken(token string) (*Identity, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("session.InspectAccessToken: %w", err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("session.InspectAccessToken: user_id: %w", err)
	}
	ident := &Identity{AccountID: id}
	if claims.ExpiresAt != nil {
		ident.ExpiresAt = claims.ExpiresAt.Time
	}
	return ident, nil
}
