package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRefreshSkew is how long before expiry an access token is replaced.
const DefaultRefreshSkew = 30 * time.Second

// ErrNoRefreshToken is returned when the access token expired and there is
// nothing to refresh it with.
var ErrNoRefreshToken = errors.New("access token expired and no refresh token is available")

// TokenSource hands out a valid access token, refreshing it through the
// backend shortly before it expires. It is safe for concurrent use.
type TokenSource struct {
	client *Client
	skew   time.Duration
	now    func() time.Time

	mu      sync.Mutex
	access  string
	refresh string
	expiry  time.Time // zero when the token carries no exp claim
}

// NewTokenSource starts from the tokens of a login or refresh response.
func NewTokenSource(c *Client, auth *AuthResponse) *TokenSource {
	ts := &TokenSource{client: c, skew: DefaultRefreshSkew, now: time.Now}
	ts.set(auth)
	return ts
}

// WithClock replaces the clock used to judge expiry.
func (ts *TokenSource) WithClock(now func() time.Time) *TokenSource {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.now = now
	return ts
}

// Token returns a usable access token.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.expiry.IsZero() || ts.now().Add(ts.skew).Before(ts.expiry) {
		return ts.access, nil
	}
	if ts.refresh == "" {
		return "", ErrNoRefreshToken
	}

	auth, err := ts.client.RefreshToken(ctx, ts.refresh)
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	ts.set(auth)
	return ts.access, nil
}

// set must be called with mu held, or before ts is shared.
func (ts *TokenSource) set(auth *AuthResponse) {
	ts.access = auth.AccessToken
	if auth.RefreshToken != "" {
		ts.refresh = auth.RefreshToken
	}
	ts.expiry = TokenExpiry(auth.AccessToken)
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The backend
// verifies; the client only needs to know when to refresh. It returns the
// zero time when the token is not a JWT or has no exp claim.
func TokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
