// File: internal/guard/guard.go
package guard

import (
	"context"

	"scholarhub_client/internal/identity"
	"scholarhub_client/internal/role"
	"scholarhub_client/internal/session"

	"go.uber.org/zap"
)

// State is the outcome of one guard evaluation. Granted and Denied hold only
// until the next session or role change re-enters Resolving implicitly.
type State int

const (
	// StateResolving: the session or role is not known yet. Render a loading
	// placeholder, nothing else.
	StateResolving State = iota
	// StateDenied: either redirected to sign-in (absent identity) or a
	// terminal forbidden view (wrong role).
	StateDenied
	// StateGranted: render the protected subtree.
	StateGranted
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateDenied:
		return "denied"
	case StateGranted:
		return "granted"
	}
	return "unknown"
}

// Decision is a State plus how a denial manifests.
type Decision struct {
	State State
	// Redirected is set when the guard sent the user to sign-in, capturing
	// the intended destination for the post-login return.
	Redirected bool
	// Forbidden is set for the terminal wrong-role view. No redirect, no retry.
	Forbidden bool
}

// SessionSource is the session store surface guards read.
type SessionSource interface {
	Current() session.Session
}

// RoleSource is the role resolver surface guards read.
type RoleSource interface {
	Snapshot(ctx context.Context, id *identity.Identity) role.Snapshot
}

// Navigator performs the sign-in redirect, carrying the originally intended
// destination so the user returns there after re-authenticating.
type Navigator interface {
	RedirectToLogin(intended string)
}

// Guard gates rendering of a subtree based on session and role.
type Guard struct {
	required  *role.Role // nil means "any signed-in identity"
	sessions  SessionSource
	roles     RoleSource
	navigator Navigator
	logger    *zap.Logger
}

// NewSignedIn creates the "must be signed in" guard.
func NewSignedIn(sessions SessionSource, navigator Navigator, logger *zap.Logger) *Guard {
	return &Guard{
		sessions:  sessions,
		navigator: navigator,
		logger:    logger.Named("SignedInGuard"),
	}
}

// NewAdmin creates the "must be admin" guard.
func NewAdmin(sessions SessionSource, roles RoleSource, navigator Navigator, logger *zap.Logger) *Guard {
	required := role.RoleAdmin
	return &Guard{
		required:  &required,
		sessions:  sessions,
		roles:     roles,
		navigator: navigator,
		logger:    logger.Named("AdminGuard"),
	}
}

// NewModerator creates the "must be moderator" guard.
func NewModerator(sessions SessionSource, roles RoleSource, navigator Navigator, logger *zap.Logger) *Guard {
	required := role.RoleModerator
	return &Guard{
		required:  &required,
		sessions:  sessions,
		roles:     roles,
		navigator: navigator,
		logger:    logger.Named("ModeratorGuard"),
	}
}

// Evaluate runs the guard for the route at currentPath. It is re-invoked on
// every session or role change; a resolving guard never exposes protected
// content, and evaluating twice in the same resolving state is idempotent.
func (g *Guard) Evaluate(ctx context.Context, currentPath string) Decision {
	sess := g.sessions.Current()
	if sess.IsResolving {
		return Decision{State: StateResolving}
	}

	if sess.Identity == nil {
		g.logger.Debug("No identity; redirecting to sign-in", zap.String("intended", currentPath))
		g.navigator.RedirectToLogin(currentPath)
		return Decision{State: StateDenied, Redirected: true}
	}

	if g.required == nil {
		return Decision{State: StateGranted}
	}

	// Role lookups run only for a signed-in identity; an error reads the same
	// as an in-flight lookup, never as authorized.
	snap := g.roles.Snapshot(ctx, sess.Identity)
	if snap.Loading {
		return Decision{State: StateResolving}
	}

	switch snap.Role {
	case *g.required:
		return Decision{State: StateGranted}
	case role.RoleStudent, role.RoleModerator, role.RoleAdmin:
		g.logger.Debug("Role mismatch; rendering forbidden view",
			zap.String("have", string(snap.Role)),
			zap.String("need", string(*g.required)),
		)
		return Decision{State: StateDenied, Forbidden: true}
	default:
		// An out-of-set label never grants anything.
		return Decision{State: StateDenied, Forbidden: true}
	}
}
