// File: internal/api/topper.go
package api

import (
	"context"
	"net/http"
	"net/url"
)

// Topper is a showcased high-achieving student profile.
type Topper struct {
	ID             string  `json:"_id"`
	Name           string  `json:"name"`
	PhotoURL       string  `json:"photo,omitempty"`
	Institution    string  `json:"institution"`
	Achievement    string  `json:"achievement"`
	ScholarshipWon string  `json:"scholarship_won,omitempty"`
	GPA            float64 `json:"gpa,omitempty"`
	Year           int     `json:"year"`
}

// TopperInput is the admin topper editor payload.
type TopperInput struct {
	Name           string  `json:"name" validate:"required"`
	PhotoURL       string  `json:"photo,omitempty" validate:"omitempty,url"`
	Institution    string  `json:"institution" validate:"required"`
	Achievement    string  `json:"achievement" validate:"required"`
	ScholarshipWon string  `json:"scholarship_won,omitempty"`
	GPA            float64 `json:"gpa,omitempty" validate:"omitempty,min=0,max=5"`
	Year           int     `json:"year" validate:"required"`
}

// TopperService covers the public toppers page and the admin topper manager.
type TopperService struct {
	client *Client
}

// NewTopperService creates a TopperService.
func NewTopperService(client *Client) *TopperService {
	return &TopperService{client: client}
}

// List fetches all topper profiles.
func (s *TopperService) List(ctx context.Context) ([]Topper, error) {
	var out []Topper
	if _, err := s.client.do(ctx, http.MethodGet, "/toppers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a topper profile. Requires an admin credential.
func (s *TopperService) Create(ctx context.Context, in TopperInput) (*Topper, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Topper
	if _, err := s.client.do(ctx, http.MethodPost, "/toppers", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update edits a topper profile. Requires an admin credential.
func (s *TopperService) Update(ctx context.Context, id string, in TopperInput) (*Topper, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Topper
	if _, err := s.client.do(ctx, http.MethodPut, "/toppers/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a topper profile. Requires an admin credential.
func (s *TopperService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/toppers/"+url.PathEscape(id), nil, nil, nil)
	return err
}
