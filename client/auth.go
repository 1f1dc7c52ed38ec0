package client

import (
	"context"
	"io"
	"net/http"
)

// Register creates a user account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: pathRegister, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req AuthRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: pathLogin, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken trades a refresh token for a new token pair. The refresh
// token travels as the bearer credential.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: pathRefreshToken, token: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateToken reports whether the backend still accepts accessToken.
// A rejected token is (false, nil); err is only set when the backend could
// not be reached.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) (bool, error) {
	resp, _, err := c.send(ctx, call{method: http.MethodGet, path: pathValidateToken, token: accessToken})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}
