// File: internal/app/navigator_test.go
package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNavigator_StartsAtHome(t *testing.T) {
	n := NewNavigator(zap.NewNop())
	assert.Equal(t, HomeRoute, n.Current())
}

func TestNavigator_RedirectCapturesIntendedDestination(t *testing.T) {
	n := NewNavigator(zap.NewNop())
	n.Go("/dashboard/applications")

	n.RedirectToLogin("/dashboard/applications")
	assert.Equal(t, LoginRoute, n.Current())

	// Successful sign-in replays the captured destination exactly once.
	assert.Equal(t, "/dashboard/applications", n.ConsumeIntended())
	assert.Equal(t, DashboardRoute, n.ConsumeIntended())
}

func TestNavigator_ConsumeIntendedFallsBackToDashboard(t *testing.T) {
	n := NewNavigator(zap.NewNop())
	assert.Equal(t, DashboardRoute, n.ConsumeIntended())
}
