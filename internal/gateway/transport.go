// File: internal/gateway/transport.go
package gateway

import (
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// AuthorizationHeader is the header name for the credential.
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens.
	AuthorizationTypeBearer = "Bearer"
	// RequestIDHeader tags every outbound request for backend correlation.
	RequestIDHeader = "X-Request-ID"
)

// CredentialSource yields the credential to attach at dispatch time. Reading
// at dispatch, not at client construction, is what guarantees a request issued
// after a refresh carries the refreshed token.
type CredentialSource interface {
	CredentialToken() (token string, ok bool)
}

// UnauthorizedPolicy reacts to a 401/403 from the protected backend. The
// production policy forces sign-out and redirects to the sign-in screen with
// the intended destination attached; tests substitute a recorder.
type UnauthorizedPolicy interface {
	OnUnauthorized(intended string)
}

// NoopPolicy ignores authorization failures. Useful for requests issued while
// deliberately signed out and in tests.
type NoopPolicy struct{}

func (NoopPolicy) OnUnauthorized(string) {}

// Transport is the authenticated request gateway: an http.RoundTripper that
// attaches the current bearer credential to every outbound request and fires
// the unauthorized policy on 401/403 responses.
type Transport struct {
	base    http.RoundTripper
	creds   CredentialSource
	policy  UnauthorizedPolicy
	limiter *rate.Limiter
	logger  *zap.Logger

	// tripped latches after the first 401/403 so concurrent failures cause
	// exactly one forced sign-out. Rearm clears it when a new identity lands.
	tripped atomic.Bool
}

// NewTransport creates the gateway transport. base may be nil, in which case
// http.DefaultTransport is used. limiter may be nil to disable rate limiting.
func NewTransport(
	base http.RoundTripper,
	creds CredentialSource,
	policy UnauthorizedPolicy,
	limiter *rate.Limiter,
	logger *zap.Logger,
) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if policy == nil {
		policy = NoopPolicy{}
	}
	return &Transport{
		base:    base,
		creds:   creds,
		policy:  policy,
		limiter: limiter,
		logger:  logger.Named("Gateway"),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	// Per RoundTripper contract the request must not be mutated in place.
	out := req.Clone(req.Context())
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if token, ok := t.creds.CredentialToken(); ok {
		out.Header.Set(AuthorizationHeader, AuthorizationTypeBearer+" "+token)
	}
	// With no identity the request still goes out; the backend is the
	// authority on rejecting it.

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if t.tripped.CompareAndSwap(false, true) {
			intended := req.URL.Path
			t.logger.Warn("Backend rejected credential; forcing sign-out",
				zap.Int("status", resp.StatusCode),
				zap.String("path", intended),
				zap.String("request_id", out.Header.Get(RequestIDHeader)),
			)
			t.policy.OnUnauthorized(intended)
		}
	}
	return resp, nil
}

// Rearm re-enables the unauthorized reaction. Called when the session store
// delivers a new signed-in identity so a later expiry triggers exactly one
// fresh sign-out cycle.
func (t *Transport) Rearm() {
	t.tripped.Store(false)
}
