// File: internal/api/review.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Review is a student's rating of a scholarship they applied to.
type Review struct {
	ID              string    `json:"_id"`
	ScholarshipID   string    `json:"scholarship_id"`
	ScholarshipName string    `json:"scholarship_name"`
	UniversityName  string    `json:"university_name"`
	ReviewerEmail   string    `json:"reviewer_email"`
	ReviewerName    string    `json:"reviewer_name"`
	ReviewerImage   string    `json:"reviewer_image,omitempty"`
	Rating          float64   `json:"rating"`
	Comment         string    `json:"comment"`
	Date            time.Time `json:"review_date"`
}

// ReviewInput is the add/edit review form payload.
type ReviewInput struct {
	ScholarshipID string  `json:"scholarship_id" validate:"required"`
	ReviewerEmail string  `json:"reviewer_email" validate:"required,email"`
	ReviewerName  string  `json:"reviewer_name" validate:"required"`
	ReviewerImage string  `json:"reviewer_image,omitempty" validate:"omitempty,url"`
	Rating        float64 `json:"rating" validate:"required,min=1,max=5"`
	Comment       string  `json:"comment" validate:"required"`
}

// ReviewService covers review display, the student's own reviews, and the
// moderator review queue.
type ReviewService struct {
	client *Client
}

// NewReviewService creates a ReviewService.
func NewReviewService(client *Client) *ReviewService {
	return &ReviewService{client: client}
}

// ForScholarship lists reviews shown on a scholarship detail page.
func (s *ReviewService) ForScholarship(ctx context.Context, scholarshipID string) ([]Review, error) {
	var out []Review
	path := "/scholarships/" + url.PathEscape(scholarshipID) + "/reviews"
	if _, err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Mine lists the signed-in student's reviews.
func (s *ReviewService) Mine(ctx context.Context, email string) ([]Review, error) {
	query := url.Values{}
	query.Set("email", email)
	var out []Review
	if _, err := s.client.do(ctx, http.MethodGet, "/reviews", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// All lists every review for the moderation queue.
func (s *ReviewService) All(ctx context.Context) ([]Review, error) {
	var out []Review
	if _, err := s.client.do(ctx, http.MethodGet, "/reviews/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add posts a new review.
func (s *ReviewService) Add(ctx context.Context, in ReviewInput) (*Review, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Review
	if _, err := s.client.do(ctx, http.MethodPost, "/reviews", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update edits the student's own review.
func (s *ReviewService) Update(ctx context.Context, id string, in ReviewInput) (*Review, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Review
	if _, err := s.client.do(ctx, http.MethodPut, "/reviews/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a review. Students delete their own; moderators delete any.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil, nil)
	return err
}
