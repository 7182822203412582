package goatflow

import (
	"context"
	"net/http"
)

// DashboardClient exposes aggregated ticket statistics.
type DashboardClient struct {
	t *transport
}

// Stats returns the dashboard overview for the authenticated user.
func (c *DashboardClient) Stats(ctx context.Context) (*DashboardStats, error) {
	body, err := c.t.do(ctx, requestSpec{
		method: http.MethodGet,
		path:   "/api/dashboard/stats",
	})
	if err != nil {
		return nil, err
	}

	var stats DashboardStats
	if err := decodeStrict(body, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
