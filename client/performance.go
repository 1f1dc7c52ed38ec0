package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ListPerformance returns the caller's own reviews.
func (c *Client) ListPerformance(ctx context.Context, token string) ([]PerformanceResponse, error) {
	var out []PerformanceResponse
	err := c.do(ctx, call{method: http.MethodGet, path: pathPerformance, token: token}, &out)
	return out, err
}

// GetPerformance returns one review.
func (c *Client) GetPerformance(ctx context.Context, token string, id int64) (*PerformanceResponse, error) {
	var out PerformanceResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: performancePath(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePerformance records a review.
func (c *Client) CreatePerformance(ctx context.Context, token string, req PerformanceRequest) (*PerformanceResponse, error) {
	var out PerformanceResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: pathPerformance, token: token, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePerformance sends only the non-nil fields of upd.
func (c *Client) UpdatePerformance(ctx context.Context, token string, id int64, upd PerformanceUpdate) (*PerformanceResponse, error) {
	var out PerformanceResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: performancePath(id), token: token, body: upd}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TeamPerformance returns the manager's team reviews between two dates.
func (c *Client) TeamPerformance(ctx context.Context, token string, start, end time.Time) ([]PerformanceResponse, error) {
	q := url.Values{
		"startDate": {FormatDate(start)},
		"endDate":   {FormatDate(end)},
	}
	var out []PerformanceResponse
	err := c.do(ctx, call{method: http.MethodGet, path: pathTeamPerformance, query: q, token: token}, &out)
	return out, err
}

// AddManagerFeedback attaches a manager's comment to a review.
func (c *Client) AddManagerFeedback(ctx context.Context, token string, id int64, feedback string) (*PerformanceResponse, error) {
	body := map[string]string{"feedback": feedback}
	var out PerformanceResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: feedbackPath(id), token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
