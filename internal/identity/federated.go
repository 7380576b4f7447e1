// File: internal/identity/federated.go
package identity

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/config"
	"scholarhub_client/internal/platform/crypto"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CallbackRoute is where the browser lands after the provider-hosted flow.
const CallbackRoute = "/oauth2/callback"

// CallbackAwaiter is the loopback server contract the federated flow rides on.
type CallbackAwaiter interface {
	// Await blocks until the given route receives a request, returning its
	// query parameters. It honors ctx cancellation.
	Await(ctx context.Context, route string) (url.Values, error)
	// RedirectURL returns the absolute URL for a loopback route.
	RedirectURL(route string) string
}

// GoogleFlow drives the provider-hosted Google sign-in: open the system
// browser on the consent page, catch the redirect on the loopback server,
// and exchange the authorization code.
type GoogleFlow struct {
	oauth    *oauth2.Config
	awaiter  CallbackAwaiter
	openURL  func(string) error
	logger   *zap.Logger
	newState func() (string, error)
}

// NewGoogleFlow builds the federated flow from config. Returns nil when no
// OAuth client is configured, which disables federated sign-in.
func NewGoogleFlow(cfg *config.Config, awaiter CallbackAwaiter, logger *zap.Logger) *GoogleFlow {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		logger.Warn("Google OAuth client not configured; federated sign-in disabled")
		return nil
	}
	return &GoogleFlow{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  awaiter.RedirectURL(CallbackRoute),
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		awaiter:  awaiter,
		openURL:  OpenInBrowser,
		logger:   logger.Named("GoogleFlow"),
		newState: generateState,
	}
}

// Authorize runs the browser round-trip and returns the provider ID token and
// the redirect URI it was delivered on.
func (f *GoogleFlow) Authorize(ctx context.Context) (idToken, redirectURI string, err error) {
	state, err := f.newState()
	if err != nil {
		return "", "", common.NewAuthError(common.AuthErrUnknown, "could not generate OAuth state", err)
	}

	authURL := f.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
	f.logger.Info("Opening provider-hosted sign-in", zap.String("url", authURL))
	if err := f.openURL(authURL); err != nil {
		return "", "", common.NewAuthError(common.AuthErrUnknown, "could not open system browser", err)
	}

	params, err := f.awaiter.Await(ctx, CallbackRoute)
	if err != nil {
		// The user closed the window or abandoned the flow.
		return "", "", common.NewAuthError(common.AuthErrPopupClosed, "sign-in window was closed before completing", err)
	}
	if params.Get("error") != "" {
		return "", "", common.NewAuthError(common.AuthErrPopupClosed, params.Get("error"), nil)
	}
	if params.Get("state") != state {
		f.logger.Error("OAuth state mismatch",
			zap.String("received_state", params.Get("state")),
			zap.String("expected_state", state),
		)
		return "", "", common.NewAuthError(common.AuthErrUnknown, "OAuth state mismatch", nil)
	}

	token, err := f.oauth.Exchange(ctx, params.Get("code"))
	if err != nil {
		return "", "", common.NewAuthError(common.AuthErrNetwork, "could not exchange authorization code", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", "", common.NewAuthError(common.AuthErrUnknown, "provider returned no ID token", nil)
	}
	return rawIDToken, f.oauth.RedirectURL, nil
}

func generateState() (string, error) {
	return crypto.GenerateSecureRandomString(16)
}

// OpenInBrowser launches the system browser on target. Shared by the
// federated sign-in and payment checkout round-trips.
func OpenInBrowser(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}
