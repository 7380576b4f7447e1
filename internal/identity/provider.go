// File: internal/identity/provider.go
package identity

import (
	"context"
	"time"
)

// Identity is the authenticated principal returned by the identity provider.
// Instances are immutable; operations that change profile or credential data
// produce a new Identity and deliver it through the session-change subscription.
type Identity struct {
	UID             string
	Email           string
	DisplayName     string
	AvatarURL       string
	CredentialToken string
	RefreshToken    string
	ExpiresAt       time.Time
}

// ProfilePatch carries the mutable display attributes of an identity.
// Nil fields are left unchanged.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
}

// Provider is the identity-provider boundary. Exactly one implementation is
// active per process; the session store subscribes to it once.
type Provider interface {
	// CreateAccount registers new email/password credentials. On success the
	// new identity is delivered through OnSessionChange before the call returns.
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)
	// SignIn exchanges existing email/password credentials for a session.
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignInFederated runs the provider-hosted browser flow and exchanges the
	// result for a session.
	SignInFederated(ctx context.Context) (*Identity, error)
	// SignOut terminates the current session. Calling it with no active
	// session is a no-op.
	SignOut(ctx context.Context) error
	// UpdateProfile mutates the display attributes of the current identity.
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*Identity, error)
	// Refresh exchanges the refresh token for a new credential token and
	// delivers the refreshed identity through OnSessionChange.
	Refresh(ctx context.Context) (*Identity, error)
	// OnSessionChange registers a callback invoked with the current
	// identity-or-nil on every change (initial state, sign-in, sign-out,
	// refresh, external invalidation). The returned cancel func removes the
	// subscription; callers must invoke it at teardown.
	OnSessionChange(cb func(*Identity)) (cancel func())
}
