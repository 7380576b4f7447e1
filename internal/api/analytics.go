// File: internal/api/analytics.go
package api

import (
	"context"
	"net/http"
)

// AdminStats are the aggregated totals shown on the admin dashboard. The
// backend computes them; the client only renders.
type AdminStats struct {
	TotalUsers        int     `json:"total_users"`
	TotalScholarships int     `json:"total_scholarships"`
	TotalApplications int     `json:"total_applications"`
	TotalReviews      int     `json:"total_reviews"`
	TotalBlogs        int     `json:"total_blogs"`
	TotalFeesPaid     float64 `json:"total_fees_paid"`
}

// AnalyticsService fetches admin dashboard aggregates.
type AnalyticsService struct {
	client *Client
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(client *Client) *AnalyticsService {
	return &AnalyticsService{client: client}
}

// AdminStats fetches the dashboard totals. Requires an admin credential.
func (s *AnalyticsService) AdminStats(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	if _, err := s.client.do(ctx, http.MethodGet, "/admin-stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
