// File: internal/session/store.go
package session

import (
	"context"
	"sync"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/identity"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Session is the process-wide view of "who is signed in right now".
// IsResolving is true only until the provider delivers its first notification.
type Session struct {
	Identity    *identity.Identity
	IsResolving bool
}

// Credentials is the email/password form payload. Presence checks only; the
// provider is the authority on credential quality.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Store is the single source of truth for the current session. It is created
// once per process and holds the one long-lived provider subscription.
type Store struct {
	provider identity.Provider
	logger   *zap.Logger
	validate *validator.Validate

	mu             sync.Mutex
	session        Session
	subs           map[int]func(Session)
	nextSub        int
	cancelUpstream func()
}

// NewStore creates the store and establishes the provider subscription.
func NewStore(provider identity.Provider, logger *zap.Logger) *Store {
	s := &Store{
		provider: provider,
		logger:   logger.Named("SessionStore"),
		validate: validator.New(),
		session:  Session{Identity: nil, IsResolving: true},
		subs:     make(map[int]func(Session)),
	}
	s.cancelUpstream = provider.OnSessionChange(s.onProviderChange)
	return s
}

// onProviderChange is the only writer of the session besides Close. The last
// notification wins regardless of which in-flight operation produced it.
func (s *Store) onProviderChange(id *identity.Identity) {
	s.mu.Lock()
	s.session = Session{Identity: id, IsResolving: false}
	subs := s.snapshotSubs()
	current := s.session
	s.mu.Unlock()

	if id != nil {
		s.logger.Debug("Session changed", zap.String("email", id.Email))
	} else {
		s.logger.Debug("Session changed", zap.String("email", ""))
	}
	for _, cb := range subs {
		cb(current)
	}
}

// Current returns the session as of the most recent provider notification.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers a callback invoked on every session change. The current
// session is delivered immediately so subscribers never start stale.
func (s *Store) Subscribe(cb func(Session)) (cancel func()) {
	s.mu.Lock()
	subID := s.nextSub
	s.nextSub++
	s.subs[subID] = cb
	current := s.session
	s.mu.Unlock()

	cb(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, subID)
		s.mu.Unlock()
	}
}

// RegisterUser begins an async credential-creation request. The session is
// resolving while the request is in flight; the resulting identity surfaces
// through the provider subscription.
func (s *Store) RegisterUser(ctx context.Context, email, password string) error {
	if err := s.validateCredentials(email, password); err != nil {
		return err
	}
	s.beginResolving()
	_, err := s.provider.CreateAccount(ctx, email, password)
	if err != nil {
		s.logger.Warn("Registration failed", zap.String("email", email), zap.Error(err))
		s.endResolving()
	}
	return err
}

// SignInUser signs in existing email/password credentials. Concurrent calls
// are permitted; the last provider notification decides the final identity.
func (s *Store) SignInUser(ctx context.Context, email, password string) error {
	if err := s.validateCredentials(email, password); err != nil {
		return err
	}
	s.beginResolving()
	_, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("Sign-in failed", zap.String("email", email), zap.Error(err))
		s.endResolving()
	}
	return err
}

// SignInFederated runs the provider-hosted flow. The caller is responsible
// for upserting the returned identity into backend user records afterward.
func (s *Store) SignInFederated(ctx context.Context) (*identity.Identity, error) {
	s.beginResolving()
	id, err := s.provider.SignInFederated(ctx)
	if err != nil {
		s.logger.Warn("Federated sign-in failed", zap.Error(err))
		s.endResolving()
		return nil, err
	}
	return id, nil
}

// beginResolving marks the session as resolving while a sign-in or
// registration request is in flight, so guards render a loading placeholder
// instead of redirecting on the still-absent identity.
func (s *Store) beginResolving() {
	s.mu.Lock()
	if s.session.IsResolving {
		s.mu.Unlock()
		return
	}
	s.session.IsResolving = true
	subs := s.snapshotSubs()
	current := s.session
	s.mu.Unlock()

	for _, cb := range subs {
		cb(current)
	}
}

// endResolving clears the resolving flag on an operation's failure path. No
// provider notification arrives on failure; without this the session would
// stay resolving forever. A success that raced in already cleared the flag
// through onProviderChange, making this a no-op.
func (s *Store) endResolving() {
	s.mu.Lock()
	if !s.session.IsResolving {
		s.mu.Unlock()
		return
	}
	s.session.IsResolving = false
	subs := s.snapshotSubs()
	current := s.session
	s.mu.Unlock()

	for _, cb := range subs {
		cb(current)
	}
}

// SignOutUser terminates the current session. A no-op when nothing is signed in.
func (s *Store) SignOutUser(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

// UpdateProfile mutates the display attributes of the current identity.
func (s *Store) UpdateProfile(ctx context.Context, patch identity.ProfilePatch) error {
	if s.Current().Identity == nil {
		return common.NewAuthError(common.AuthErrNoSession, "no identity is signed in", nil)
	}
	_, err := s.provider.UpdateProfile(ctx, patch)
	return err
}

// Close tears down the provider subscription. Called once at process teardown.
func (s *Store) Close() {
	if s.cancelUpstream != nil {
		s.cancelUpstream()
		s.cancelUpstream = nil
	}
}

// snapshotSubs must be called with s.mu held.
func (s *Store) snapshotSubs() []func(Session) {
	subs := make([]func(Session), 0, len(s.subs))
	for _, cb := range s.subs {
		subs = append(subs, cb)
	}
	return subs
}

func (s *Store) validateCredentials(email, password string) error {
	err := s.validate.Struct(Credentials{Email: email, Password: password})
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return common.NewValidationError(verrs)
	}
	return common.NewAuthError(common.AuthErrUnknown, "invalid form input", err)
}
