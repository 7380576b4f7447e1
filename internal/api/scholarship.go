// File: internal/api/scholarship.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"scholarhub_client/internal/common"
)

// Scholarship is a marketplace listing. The backend owns its business rules;
// this layer only carries the payload.
type Scholarship struct {
	ID                  string    `json:"_id"`
	ScholarshipName     string    `json:"scholarship_name"`
	UniversityName      string    `json:"university_name"`
	UniversityCountry   string    `json:"university_country"`
	UniversityCity      string    `json:"university_city"`
	UniversityWorldRank int       `json:"university_world_rank"`
	SubjectCategory     string    `json:"subject_category"`
	ScholarshipCategory string    `json:"scholarship_category"`
	Degree              string    `json:"degree"`
	TuitionFees         float64   `json:"tuition_fees,omitempty"`
	ApplicationFees     float64   `json:"application_fees"`
	ServiceCharge       float64   `json:"service_charge"`
	Deadline            time.Time `json:"application_deadline"`
	PostDate            time.Time `json:"scholarship_post_date"`
	PostedUserEmail     string    `json:"posted_user_email"`
	ImageURL            string    `json:"university_image"`
	Description         string    `json:"description,omitempty"`
	AverageRating       float64   `json:"average_rating,omitempty"`
}

// ScholarshipInput is the create/update payload. Presence checks only.
type ScholarshipInput struct {
	ScholarshipName     string    `json:"scholarship_name" validate:"required"`
	UniversityName      string    `json:"university_name" validate:"required"`
	UniversityCountry   string    `json:"university_country" validate:"required"`
	UniversityCity      string    `json:"university_city" validate:"required"`
	UniversityWorldRank int       `json:"university_world_rank"`
	SubjectCategory     string    `json:"subject_category" validate:"required"`
	ScholarshipCategory string    `json:"scholarship_category" validate:"required"`
	Degree              string    `json:"degree" validate:"required"`
	TuitionFees         float64   `json:"tuition_fees,omitempty"`
	ApplicationFees     float64   `json:"application_fees" validate:"required"`
	ServiceCharge       float64   `json:"service_charge"`
	Deadline            time.Time `json:"application_deadline" validate:"required"`
	PostedUserEmail     string    `json:"posted_user_email" validate:"required,email"`
	ImageURL            string    `json:"university_image" validate:"required,url"`
	Description         string    `json:"description,omitempty"`
}

// ScholarshipQuery carries the listing page's search, sort and pagination state.
type ScholarshipQuery struct {
	Search string
	Sort   string // e.g. "fees_asc", "fees_desc", "date_desc"
	Page   common.PageQuery
}

// ScholarshipService reads and (for moderators) writes scholarship listings.
type ScholarshipService struct {
	client *Client
}

// NewScholarshipService creates a ScholarshipService.
func NewScholarshipService(client *Client) *ScholarshipService {
	return &ScholarshipService{client: client}
}

// List fetches one page of scholarships matching the query.
func (s *ScholarshipService) List(ctx context.Context, q ScholarshipQuery) ([]Scholarship, *common.Pagination, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	q.Page.Apply(query)

	var out []Scholarship
	pagination, err := s.client.do(ctx, http.MethodGet, "/scholarships", query, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, pagination, nil
}

// Top fetches the landing-page selection of low-fee, recently posted listings.
func (s *ScholarshipService) Top(ctx context.Context) ([]Scholarship, error) {
	var out []Scholarship
	if _, err := s.client.do(ctx, http.MethodGet, "/top-scholarships", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one scholarship by ID.
func (s *ScholarshipService) Get(ctx context.Context, id string) (*Scholarship, error) {
	var out Scholarship
	if _, err := s.client.do(ctx, http.MethodGet, "/scholarships/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a listing. Requires a moderator or admin credential.
func (s *ScholarshipService) Create(ctx context.Context, in ScholarshipInput) (*Scholarship, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Scholarship
	if _, err := s.client.do(ctx, http.MethodPost, "/scholarships", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a listing. Requires a moderator or admin credential.
func (s *ScholarshipService) Update(ctx context.Context, id string, in ScholarshipInput) (*Scholarship, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Scholarship
	if _, err := s.client.do(ctx, http.MethodPut, "/scholarships/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a listing. Requires a moderator or admin credential.
func (s *ScholarshipService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/scholarships/"+url.PathEscape(id), nil, nil, nil)
	return err
}
