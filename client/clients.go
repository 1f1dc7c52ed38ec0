package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListClients returns the clients visible to the caller.
func (c *Client) ListClients(ctx context.Context, token string) ([]ClientResponse, error) {
	var out []ClientResponse
	err := c.do(ctx, call{method: http.MethodGet, path: pathClients, token: token}, &out)
	return out, err
}

// GetClient returns one client.
func (c *Client) GetClient(ctx context.Context, token string, id int64) (*ClientResponse, error) {
	var out ClientResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: clientPath(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateClient validates req locally, then creates the client.
func (c *Client) CreateClient(ctx context.Context, token string, req ClientRequest) (*ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out ClientResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: pathClients, token: token, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient sends only the non-nil fields of upd.
func (c *Client) UpdateClient(ctx context.Context, token string, id int64, upd ClientUpdate) (*ClientResponse, error) {
	var out ClientResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: clientPath(id), token: token, body: upd}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClient removes a client.
func (c *Client) DeleteClient(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: clientPath(id), token: token}, nil)
}

// ClientsByInsuranceType lists clients holding a given kind of policy.
func (c *Client) ClientsByInsuranceType(ctx context.Context, token string, t InsuranceType) ([]ClientResponse, error) {
	var out []ClientResponse
	path := pathClientsByInsurance + "/" + url.PathEscape(string(t))
	err := c.do(ctx, call{method: http.MethodGet, path: path, token: token}, &out)
	return out, err
}

// ClientsByPolicyStatus lists clients whose policy has the given status.
func (c *Client) ClientsByPolicyStatus(ctx context.Context, token string, status PolicyStatus) ([]ClientResponse, error) {
	var out []ClientResponse
	path := pathClientsByStatus + "/" + url.PathEscape(string(status))
	err := c.do(ctx, call{method: http.MethodGet, path: path, token: token}, &out)
	return out, err
}

// ExpiringPolicies lists clients whose policy ends within the backend's
// renewal window.
func (c *Client) ExpiringPolicies(ctx context.Context, token string) ([]ClientResponse, error) {
	var out []ClientResponse
	err := c.do(ctx, call{method: http.MethodGet, path: pathExpiringPolicies, token: token}, &out)
	return out, err
}
