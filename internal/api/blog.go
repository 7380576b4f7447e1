// File: internal/api/blog.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gosimple/slug"
)

// Blog publication states.
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
)

// Blog is an article on the marketplace's content pages.
type Blog struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image,omitempty"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BlogInput is the admin blog editor payload. The slug is derived from the
// title client-side so the edit preview matches the published URL.
type BlogInput struct {
	Title       string `json:"title" validate:"required"`
	Slug        string `json:"slug"`
	Content     string `json:"content" validate:"required"`
	ImageURL    string `json:"image,omitempty" validate:"omitempty,url"`
	AuthorEmail string `json:"author_email" validate:"required,email"`
	AuthorName  string `json:"author_name" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=draft published"`
}

// BlogService covers the public blog pages and the admin blog manager.
type BlogService struct {
	client *Client
}

// NewBlogService creates a BlogService.
func NewBlogService(client *Client) *BlogService {
	return &BlogService{client: client}
}

// List fetches blogs, optionally filtered by status ("" for all).
func (s *BlogService) List(ctx context.Context, status string) ([]Blog, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var out []Blog
	if _, err := s.client.do(ctx, http.MethodGet, "/blogs", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a blog by its slug.
func (s *BlogService) Get(ctx context.Context, blogSlug string) (*Blog, error) {
	var out Blog
	if _, err := s.client.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(blogSlug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create publishes or drafts a new blog. Requires an admin credential.
func (s *BlogService) Create(ctx context.Context, in BlogInput) (*Blog, error) {
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Blog
	if _, err := s.client.do(ctx, http.MethodPost, "/blogs", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update edits a blog. A changed title re-derives the slug.
func (s *BlogService) Update(ctx context.Context, id string, in BlogInput) (*Blog, error) {
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out Blog
	if _, err := s.client.do(ctx, http.MethodPut, "/blogs/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a blog. Requires an admin credential.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/blogs/"+url.PathEscape(id), nil, nil, nil)
	return err
}
