// File: internal/guard/guard_test.go
package guard

import (
	"context"
	"testing"

	"scholarhub_client/internal/identity"
	"scholarhub_client/internal/role"
	"scholarhub_client/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessions struct {
	session session.Session
}

func (f *fakeSessions) Current() session.Session { return f.session }

type fakeRoles struct {
	snapshot role.Snapshot
	calls    int
}

func (f *fakeRoles) Snapshot(ctx context.Context, id *identity.Identity) role.Snapshot {
	f.calls++
	return f.snapshot
}

type fakeNavigator struct {
	redirects []string
}

func (f *fakeNavigator) RedirectToLogin(intended string) {
	f.redirects = append(f.redirects, intended)
}

func signedIn(email string) session.Session {
	return session.Session{Identity: &identity.Identity{UID: "uid", Email: email}}
}

func TestGuard_ResolvingSessionRendersNothing(t *testing.T) {
	sessions := &fakeSessions{session: session.Session{IsResolving: true}}
	roles := &fakeRoles{}
	nav := &fakeNavigator{}
	g := NewAdmin(sessions, roles, nav, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard")
	assert.Equal(t, StateResolving, decision.State)
	assert.Empty(t, nav.redirects, "a resolving guard must not redirect")
	assert.Equal(t, 0, roles.calls, "no role lookup before the session settles")

	// Evaluating again in the same state is idempotent.
	decision = g.Evaluate(context.Background(), "/dashboard")
	assert.Equal(t, StateResolving, decision.State)
	assert.Empty(t, nav.redirects)
}

func TestGuard_AbsentIdentityRedirectsWithIntendedPath(t *testing.T) {
	sessions := &fakeSessions{session: session.Session{Identity: nil}}
	nav := &fakeNavigator{}
	g := NewSignedIn(sessions, nav, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard/applications")
	assert.Equal(t, StateDenied, decision.State)
	assert.True(t, decision.Redirected)
	assert.False(t, decision.Forbidden)
	require.Len(t, nav.redirects, 1)
	assert.Equal(t, "/dashboard/applications", nav.redirects[0])
}

func TestGuard_SignedInGuardGrantsAnyIdentity(t *testing.T) {
	sessions := &fakeSessions{session: signedIn("student@example.com")}
	nav := &fakeNavigator{}
	g := NewSignedIn(sessions, nav, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard")
	assert.Equal(t, StateGranted, decision.State)
	assert.Empty(t, nav.redirects)
}

func TestGuard_RoleGuards(t *testing.T) {
	tests := []struct {
		name       string
		guard      func(SessionSource, RoleSource, Navigator, *zap.Logger) *Guard
		have       role.Role
		wantState  State
		wantForbid bool
	}{
		{name: "admin guard grants admin", guard: NewAdmin, have: role.RoleAdmin, wantState: StateGranted},
		{name: "admin guard forbids student", guard: NewAdmin, have: role.RoleStudent, wantState: StateDenied, wantForbid: true},
		{name: "admin guard forbids moderator", guard: NewAdmin, have: role.RoleModerator, wantState: StateDenied, wantForbid: true},
		{name: "moderator guard grants moderator", guard: NewModerator, have: role.RoleModerator, wantState: StateGranted},
		{name: "moderator guard forbids admin", guard: NewModerator, have: role.RoleAdmin, wantState: StateDenied, wantForbid: true},
		{name: "moderator guard forbids student", guard: NewModerator, have: role.RoleStudent, wantState: StateDenied, wantForbid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{session: signedIn("u@example.com")}
			roles := &fakeRoles{snapshot: role.Snapshot{Role: tt.have}}
			nav := &fakeNavigator{}
			g := tt.guard(sessions, roles, nav, zap.NewNop())

			decision := g.Evaluate(context.Background(), "/protected")
			assert.Equal(t, tt.wantState, decision.State)
			assert.Equal(t, tt.wantForbid, decision.Forbidden)
			// A wrong role is terminal: no sign-in redirect.
			assert.Empty(t, nav.redirects)
		})
	}
}

func TestGuard_RoleLoadingReadsAsResolving(t *testing.T) {
	sessions := &fakeSessions{session: signedIn("u@example.com")}
	roles := &fakeRoles{snapshot: role.Snapshot{Loading: true}}
	nav := &fakeNavigator{}
	g := NewAdmin(sessions, roles, nav, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/admin")
	assert.Equal(t, StateResolving, decision.State)
	assert.False(t, decision.Forbidden)
	assert.Empty(t, nav.redirects)
}

func TestGuard_OutOfSetRoleNeverGrants(t *testing.T) {
	sessions := &fakeSessions{session: signedIn("u@example.com")}
	roles := &fakeRoles{snapshot: role.Snapshot{Role: role.Role("superuser")}}
	nav := &fakeNavigator{}
	g := NewAdmin(sessions, roles, nav, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/admin")
	assert.Equal(t, StateDenied, decision.State)
	assert.True(t, decision.Forbidden)
}

func TestGuard_SignOutWhileMountedRedirects(t *testing.T) {
	sessions := &fakeSessions{session: signedIn("u@example.com")}
	roles := &fakeRoles{snapshot: role.Snapshot{Role: role.RoleAdmin}}
	nav := &fakeNavigator{}
	g := NewAdmin(sessions, roles, nav, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/admin")
	require.Equal(t, StateGranted, decision.State)

	// The session ends while the protected subtree is showing; the next
	// evaluation redirects instead of rendering stale content.
	sessions.session = session.Session{Identity: nil}
	decision = g.Evaluate(context.Background(), "/admin")
	assert.Equal(t, StateDenied, decision.State)
	assert.True(t, decision.Redirected)
	require.Len(t, nav.redirects, 1)
	assert.Equal(t, "/admin", nav.redirects[0])
}

func TestGuardState_String(t *testing.T) {
	assert.Equal(t, "resolving", StateResolving.String())
	assert.Equal(t, "denied", StateDenied.String())
	assert.Equal(t, "granted", StateGranted.String())
}
