package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ListAttendance returns the caller's own attendance records.
func (c *Client) ListAttendance(ctx context.Context, token string) ([]AttendanceResponse, error) {
	var out []AttendanceResponse
	err := c.do(ctx, call{method: http.MethodGet, path: pathAttendance, token: token}, &out)
	return out, err
}

// GetAttendance returns one attendance record.
func (c *Client) GetAttendance(ctx context.Context, token string, id int64) (*AttendanceResponse, error) {
	var out AttendanceResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: attendancePath(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckIn opens an attendance record.
func (c *Client) CheckIn(ctx context.Context, token string, req AttendanceRequest) (*AttendanceResponse, error) {
	var out AttendanceResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: pathCheckIn, token: token, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckOut closes an attendance record at the given time.
func (c *Client) CheckOut(ctx context.Context, token string, id int64, checkOut time.Time) (*AttendanceResponse, error) {
	body := map[string]string{"checkOutTime": FormatLocalDateTime(checkOut.In(c.location))}
	var out AttendanceResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: checkOutPath(id), token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MonthlySummary returns the backend's summary of the caller's month.
// month is 1-12.
func (c *Client) MonthlySummary(ctx context.Context, token string, year int, month time.Month) (*AttendanceSummary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month out of range: %d", month)
	}
	var out AttendanceSummary
	if err := c.do(ctx, call{method: http.MethodGet, path: summaryPath(year, int(month)), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TeamAttendance returns the manager's team records for one day.
func (c *Client) TeamAttendance(ctx context.Context, token string, day time.Time) ([]AttendanceResponse, error) {
	q := url.Values{"date": {FormatDate(day)}}
	var out []AttendanceResponse
	err := c.do(ctx, call{method: http.MethodGet, path: pathTeamAttendance, query: q, token: token}, &out)
	return out, err
}

// UpdateAttendanceStatus overrides the status of a record. notes may be empty.
func (c *Client) UpdateAttendanceStatus(ctx context.Context, token string, id int64, status AttendanceStatus, notes string) (*AttendanceResponse, error) {
	body := struct {
		Status AttendanceStatus `json:"status"`
		Notes  string           `json:"notes,omitempty"`
	}{status, notes}

	var out AttendanceResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: statusPath(id), token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
