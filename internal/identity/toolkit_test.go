// File: internal/identity/toolkit_test.go
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMapToolkitError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want common.AuthErrorKind
	}{
		{name: "email exists", code: "EMAIL_EXISTS", want: common.AuthErrEmailInUse},
		{name: "weak password", code: "WEAK_PASSWORD", want: common.AuthErrWeakPassword},
		{name: "weak password with detail", code: "WEAK_PASSWORD : Password should be at least 6 characters", want: common.AuthErrWeakPassword},
		{name: "email not found", code: "EMAIL_NOT_FOUND", want: common.AuthErrInvalidCredentials},
		{name: "invalid password", code: "INVALID_PASSWORD", want: common.AuthErrInvalidCredentials},
		{name: "combined credential code", code: "INVALID_LOGIN_CREDENTIALS", want: common.AuthErrInvalidCredentials},
		{name: "disabled user", code: "USER_DISABLED", want: common.AuthErrInvalidCredentials},
		{name: "anything else", code: "OPERATION_NOT_ALLOWED", want: common.AuthErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapToolkitError(tt.code)
			assert.Equal(t, tt.want, err.Kind)
		})
	}
}

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		IdentityBaseURL: backend.URL,
		SecureTokenURL:  backend.URL + "/token",
		IdentityAPIKey:  "test-key",
		HTTPTimeout:     5 * time.Second,
	}
	return NewService(cfg, nil, zap.NewNop())
}

func TestService_SignInDeliversIdentity(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(map[string]string{
			"localId":      "uid-1",
			"email":        "Jane@Example.com",
			"displayName":  "Jane",
			"idToken":      "tok-1",
			"refreshToken": "ref-1",
			"expiresIn":    "3600",
		})
	}))

	var notified []*Identity
	cancel := svc.OnSessionChange(func(id *Identity) { notified = append(notified, id) })
	defer cancel()
	require.Len(t, notified, 1)
	assert.Nil(t, notified[0], "initial state is signed out")

	id, err := svc.SignIn(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "jane@example.com", id.Email, "emails are normalized to lowercase")
	assert.Equal(t, "tok-1", id.CredentialToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, 5*time.Second)

	require.Len(t, notified, 2)
	assert.Equal(t, "uid-1", notified[1].UID)
	assert.Equal(t, id, svc.Current())
}

func TestService_SignInMapsProviderError(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "INVALID_PASSWORD"},
		})
	}))

	_, err := svc.SignIn(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, common.AuthErrInvalidCredentials, common.AuthKind(err))
	assert.Nil(t, svc.Current())
}

func TestService_CreateAccountEmailInUse(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signUp", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "EMAIL_EXISTS"},
		})
	}))

	_, err := svc.CreateAccount(context.Background(), "taken@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, common.AuthErrEmailInUse, common.AuthKind(err))
}

func TestService_SignOutIsIdempotent(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"localId": "uid-1", "email": "jane@example.com",
			"idToken": "tok-1", "refreshToken": "ref-1", "expiresIn": "3600",
		})
	}))

	_, err := svc.SignIn(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)

	var notifications int
	cancel := svc.OnSessionChange(func(*Identity) { notifications++ })
	defer cancel()
	require.Equal(t, 1, notifications)

	require.NoError(t, svc.SignOut(context.Background()))
	assert.Nil(t, svc.Current())
	assert.Equal(t, 2, notifications)

	// Signing out again is a no-op and notifies nobody.
	require.NoError(t, svc.SignOut(context.Background()))
	assert.Equal(t, 2, notifications)
}

func TestService_RefreshRotatesCredential(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			json.NewEncoder(w).Encode(map[string]string{
				"localId": "uid-1", "email": "jane@example.com",
				"idToken": "tok-old", "refreshToken": "ref-old", "expiresIn": "3600",
			})
		case "/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "ref-old", r.PostForm.Get("refresh_token"))
			json.NewEncoder(w).Encode(map[string]string{
				"id_token": "tok-new", "refresh_token": "ref-new", "expires_in": "3600",
			})
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	}))

	_, err := svc.SignIn(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)

	id, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-new", id.CredentialToken)
	assert.Equal(t, "ref-new", id.RefreshToken)
	assert.Equal(t, "uid-1", id.UID, "profile fields survive the refresh")
	assert.Equal(t, "tok-new", svc.Current().CredentialToken)
}

func TestService_RejectedRefreshTerminatesSession(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			json.NewEncoder(w).Encode(map[string]string{
				"localId": "uid-1", "email": "jane@example.com",
				"idToken": "tok-old", "refreshToken": "ref-old", "expiresIn": "3600",
			})
		case "/token":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": 400, "message": "TOKEN_EXPIRED"},
			})
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	}))

	_, err := svc.SignIn(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.AuthErrInvalidCredentials, common.AuthKind(err))
	assert.Nil(t, svc.Current(), "external expiry must sign the session out")
}

func TestService_RefreshWithoutSession(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be reached without a session")
	}))

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.AuthErrNoSession, common.AuthKind(err))
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			json.NewEncoder(w).Encode(map[string]string{
				"localId": "uid-1", "email": "jane@example.com", "displayName": "Jane",
				"idToken": "tok-1", "refreshToken": "ref-1", "expiresIn": "3600",
			})
		case "/accounts:update":
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "tok-1", payload["idToken"])
			assert.Equal(t, "Jane Q. Doe", payload["displayName"])
			json.NewEncoder(w).Encode(map[string]string{
				"localId": "uid-1", "displayName": "Jane Q. Doe",
			})
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	}))

	_, err := svc.SignIn(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)

	name := "Jane Q. Doe"
	id, err := svc.UpdateProfile(context.Background(), ProfilePatch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", id.DisplayName)
	assert.Equal(t, "jane@example.com", id.Email, "untouched fields carry over")
	assert.Equal(t, "tok-1", id.CredentialToken)
}

func TestService_FederatedNotConfigured(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := svc.SignInFederated(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.AuthErrUnknown, common.AuthKind(err))
}
