// File: internal/role/resolver.go
package role

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/identity"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Role is the closed set of coarse permission labels the backend assigns.
type Role string

const (
	RoleStudent   Role = "student"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known labels.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Snapshot is the non-blocking view guards consume. Loading covers both an
// in-flight lookup and a failed one; neither ever reads as authorized.
type Snapshot struct {
	Role    Role
	Loading bool
}

// Reader is the backend surface the resolver queries.
type Reader interface {
	UserRole(ctx context.Context, email string) (string, error)
}

// Resolver translates an identity into its permission label, cached per
// identity email so a re-signed-in different user never reuses a stale role.
type Resolver struct {
	reader Reader
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]Role
	group singleflight.Group
}

// NewResolver creates a Resolver over the given backend reader.
func NewResolver(reader Reader, logger *zap.Logger) *Resolver {
	return &Resolver{
		reader: reader,
		logger: logger.Named("RoleResolver"),
		cache:  make(map[string]Role),
	}
}

// Resolve returns the role for the identity, fetching at most once per email
// even under concurrent calls. A missing or unrecognized backend role maps to
// RoleStudent; a failed lookup returns common.ErrRoleLookup and caches nothing.
func (r *Resolver) Resolve(ctx context.Context, id *identity.Identity) (Role, error) {
	if id == nil {
		return "", fmt.Errorf("%w: no identity", common.ErrRoleLookup)
	}
	email := strings.ToLower(id.Email)

	r.mu.Lock()
	if cached, ok := r.cache[email]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(email, func() (interface{}, error) {
		raw, err := r.reader.UserRole(ctx, email)
		if err != nil {
			r.logger.Warn("Role lookup failed", zap.String("email", email), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", common.ErrRoleLookup, err)
		}
		resolved := normalize(raw)
		r.mu.Lock()
		r.cache[email] = resolved
		r.mu.Unlock()
		r.logger.Debug("Role resolved", zap.String("email", email), zap.String("role", string(resolved)))
		return resolved, nil
	})
	if err != nil {
		return "", err
	}
	return v.(Role), nil
}

// Snapshot returns the cached role without blocking. On a cache miss it kicks
// off a background fetch and reports loading; guards re-evaluate later.
func (r *Resolver) Snapshot(ctx context.Context, id *identity.Identity) Snapshot {
	if id == nil {
		return Snapshot{Loading: true}
	}
	email := strings.ToLower(id.Email)

	r.mu.Lock()
	cached, ok := r.cache[email]
	r.mu.Unlock()
	if ok {
		return Snapshot{Role: cached}
	}

	go func() {
		// Result lands in the cache keyed by email; a guard mounted for a
		// different identity can never observe it.
		if _, err := r.Resolve(context.WithoutCancel(ctx), id); err != nil {
			r.logger.Debug("Background role fetch failed; staying in loading state", zap.Error(err))
		}
	}()
	return Snapshot{Loading: true}
}

// Invalidate drops the cached role for one email.
func (r *Resolver) Invalidate(email string) {
	r.mu.Lock()
	delete(r.cache, strings.ToLower(email))
	r.mu.Unlock()
}

// Reset drops the whole cache. Called when the session identity changes.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]Role)
	r.mu.Unlock()
}

// normalize maps the backend's role field onto the closed set. Anything
// empty or unknown becomes the least-privileged label, never a promotion.
func normalize(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleModerator:
		return RoleModerator
	default:
		return RoleStudent
	}
}
