// File: internal/api/user.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/identity"
)

// User is a backend user record, distinct from the identity-provider Identity.
// The backend keys users by email and owns the role field.
type User struct {
	ID          string    `json:"_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
}

// UserService covers the backend user records: the post-sign-in upsert, the
// role read the resolver depends on, and the admin user manager.
type UserService struct {
	client *Client
}

// NewUserService creates a UserService.
func NewUserService(client *Client) *UserService {
	return &UserService{client: client}
}

// Upsert records the identity in backend user storage. Idempotent: the
// backend updates the existing record when the email is already known.
// Called after every sign-in, including federated ones.
func (s *UserService) Upsert(ctx context.Context, id *identity.Identity) (*User, error) {
	if id == nil {
		return nil, common.NewAuthError(common.AuthErrNoSession, "no identity to upsert", nil)
	}
	body := map[string]string{
		"email":        strings.ToLower(id.Email),
		"display_name": id.DisplayName,
		"photo_url":    id.AvatarURL,
	}
	var out User
	path := "/users/" + url.PathEscape(strings.ToLower(id.Email))
	if _, err := s.client.do(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserRole fetches the coarse permission label for an email. An empty role
// field is returned as-is; the role resolver owns the defaulting policy.
func (s *UserService) UserRole(ctx context.Context, email string) (string, error) {
	var out struct {
		Role string `json:"role"`
	}
	path := "/users/" + url.PathEscape(strings.ToLower(email)) + "/role"
	if _, err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

// List fetches user records, optionally filtered by role. Requires an admin
// credential.
func (s *UserService) List(ctx context.Context, roleFilter string, page common.PageQuery) ([]User, *common.Pagination, error) {
	query := url.Values{}
	if roleFilter != "" {
		query.Set("role", roleFilter)
	}
	page.Apply(query)
	var out []User
	pagination, err := s.client.do(ctx, http.MethodGet, "/users", query, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, pagination, nil
}

// SetRole changes a user's permission label. Requires an admin credential.
func (s *UserService) SetRole(ctx context.Context, email, role string) error {
	body := map[string]string{"role": role}
	path := "/users/" + url.PathEscape(strings.ToLower(email)) + "/role"
	_, err := s.client.do(ctx, http.MethodPatch, path, nil, body, nil)
	return err
}

// Delete removes a user record. Requires an admin credential.
func (s *UserService) Delete(ctx context.Context, email string) error {
	path := "/users/" + url.PathEscape(strings.ToLower(email))
	_, err := s.client.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}
