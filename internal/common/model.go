// File: internal/common/model.go
package common

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination mirrors the pagination block of paginated backend responses.
type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// PageQuery holds pagination parameters for listing requests.
type PageQuery struct {
	Page     int
	PageSize int
}

// Normalize clamps the query to the backend's accepted ranges.
func (pq PageQuery) Normalize() PageQuery {
	if pq.Page <= 0 {
		pq.Page = DefaultPage
	}
	if pq.PageSize <= 0 {
		pq.PageSize = DefaultPageSize
	}
	if pq.PageSize > MaxPageSize {
		pq.PageSize = MaxPageSize
	}
	return pq
}

// Apply writes the pagination parameters onto a request query.
func (pq PageQuery) Apply(q url.Values) {
	n := pq.Normalize()
	q.Set("page", strconv.Itoa(n.Page))
	q.Set("page_size", strconv.Itoa(n.PageSize))
}
