// Package session owns the client's authentication state: the bearer token,
// its refresh token, the absolute expiry, and the authenticated user. Only
// this package mutates that state; the gateway and UI read it.
package session

import (
	"time"

	"github.com/me/gobank/pkg/model"
)

// Storage keys for the durable client store. They mirror what the browser
// client kept in localStorage, so a persisted session survives restarts.
const (
	keyToken        = "token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
	keyExpiresAt    = "token_expires_at"
)

// Session is the in-memory authentication state.
//
// A session with a token but a past expiry is NOT logged in, even though the
// token value stays present until an explicit logout clears it.
type Session struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is epoch milliseconds; 0 means no expiry is held.
	ExpiresAt int64
	User      *model.User
}

// LoggedIn reports whether the session holds a token whose expiry is
// strictly in the future. An expiry exactly equal to now counts as expired.
func (s Session) LoggedIn(now time.Time) bool {
	return s.AccessToken != "" && s.ExpiresAt > now.UnixMilli()
}

// RefreshStrategy selects how Refresh obtains a usable token.
type RefreshStrategy string

const (
	// RefreshRevalidate re-validates the current access token. This is the
	// historical behavior of this client: it only helps when the server
	// rejected a token the client still considers current. Once the access
	// token itself is expired it cannot succeed.
	RefreshRevalidate RefreshStrategy = "revalidate"
	// RefreshExchange trades the stored refresh token for fresh credentials
	// via the dedicated refresh endpoint.
	RefreshExchange RefreshStrategy = "exchange"
)

// ParseRefreshStrategy maps a config string to a strategy, defaulting to
// revalidate.
func ParseRefreshStrategy(s string) RefreshStrategy {
	if s == string(RefreshExchange) {
		return RefreshExchange
	}
	return RefreshRevalidate
}
