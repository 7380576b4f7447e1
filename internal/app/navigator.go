// File: internal/app/navigator.go
package app

import (
	"sync"

	"go.uber.org/zap"
)

// Well-known client routes.
const (
	LoginRoute     = "/auth/login"
	HomeRoute      = "/"
	DashboardRoute = "/dashboard"
)

// Navigator owns the client's current location. Guards and the gateway's
// unauthorized policy redirect through it; after re-authentication the
// captured intended destination is replayed.
type Navigator struct {
	logger *zap.Logger

	mu       sync.Mutex
	current  string
	intended string
}

// NewNavigator creates a Navigator positioned at the home route.
func NewNavigator(logger *zap.Logger) *Navigator {
	return &Navigator{
		logger:  logger.Named("Navigator"),
		current: HomeRoute,
	}
}

// Go moves to a route.
func (n *Navigator) Go(route string) {
	n.mu.Lock()
	n.current = route
	n.mu.Unlock()
	n.logger.Debug("Navigated", zap.String("route", route))
}

// Current returns the current route.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// RedirectToLogin sends the user to the sign-in screen, capturing where they
// were headed so sign-in can return them there.
func (n *Navigator) RedirectToLogin(intended string) {
	n.mu.Lock()
	n.current = LoginRoute
	n.intended = intended
	n.mu.Unlock()
	n.logger.Info("Redirected to sign-in", zap.String("intended", intended))
}

// ConsumeIntended returns and clears the captured destination, falling back
// to the dashboard when none was captured.
func (n *Navigator) ConsumeIntended() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	intended := n.intended
	n.intended = ""
	if intended == "" {
		return DashboardRoute
	}
	return intended
}
