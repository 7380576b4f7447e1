// File: internal/identity/toolkit.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/config"

	"go.uber.org/zap"
)

// Service is the Identity Toolkit REST implementation of Provider. It owns the
// current identity and fans session changes out to subscribers.
type Service struct {
	cfg        *config.Config
	httpClient *http.Client
	federated  *GoogleFlow
	logger     *zap.Logger

	mu      sync.Mutex
	current *Identity
	subs    map[int]func(*Identity)
	nextSub int
}

// NewService creates the identity provider service. The federated flow may be
// nil, in which case SignInFederated fails with AuthErrUnknown.
func NewService(cfg *config.Config, federated *GoogleFlow, logger *zap.Logger) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		federated:  federated,
		logger:     logger.Named("IdentityService"),
		subs:       make(map[int]func(*Identity)),
	}
}

// toolkitResponse covers the fields shared by the signUp, signInWithPassword,
// update and signInWithIdp endpoints.
type toolkitResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	res, err := s.post(ctx, "accounts:signUp", payload)
	if err != nil {
		return nil, err
	}
	id := s.identityFrom(res)
	s.setCurrent(id)
	s.logger.Info("Account created", zap.String("email", id.Email))
	return id, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	res, err := s.post(ctx, "accounts:signInWithPassword", payload)
	if err != nil {
		return nil, err
	}
	id := s.identityFrom(res)
	s.setCurrent(id)
	s.logger.Info("Signed in", zap.String("email", id.Email))
	return id, nil
}

func (s *Service) SignInFederated(ctx context.Context) (*Identity, error) {
	if s.federated == nil {
		return nil, common.NewAuthError(common.AuthErrUnknown, "federated sign-in is not configured", nil)
	}
	idpToken, redirectURI, err := s.federated.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"postBody":          "id_token=" + idpToken + "&providerId=google.com",
		"requestUri":        redirectURI,
		"returnSecureToken": true,
	}
	res, err := s.post(ctx, "accounts:signInWithIdp", payload)
	if err != nil {
		return nil, err
	}
	id := s.identityFrom(res)
	s.setCurrent(id)
	s.logger.Info("Federated sign-in complete", zap.String("email", id.Email))
	return id, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	email := s.current.Email
	s.current = nil
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, cb := range subs {
		cb(nil)
	}
	s.logger.Info("Signed out", zap.String("email", email))
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (*Identity, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil, common.NewAuthError(common.AuthErrNoSession, "no identity is signed in", nil)
	}

	payload := map[string]interface{}{
		"idToken":           current.CredentialToken,
		"returnSecureToken": true,
	}
	if patch.DisplayName != nil {
		payload["displayName"] = *patch.DisplayName
	}
	if patch.AvatarURL != nil {
		payload["photoUrl"] = *patch.AvatarURL
	}
	res, err := s.post(ctx, "accounts:update", payload)
	if err != nil {
		return nil, err
	}

	// The update endpoint omits unchanged fields; carry them over.
	id := &Identity{
		UID:             current.UID,
		Email:           current.Email,
		DisplayName:     current.DisplayName,
		AvatarURL:       current.AvatarURL,
		CredentialToken: current.CredentialToken,
		RefreshToken:    current.RefreshToken,
		ExpiresAt:       current.ExpiresAt,
	}
	if res.DisplayName != "" || patch.DisplayName != nil {
		id.DisplayName = res.DisplayName
	}
	if res.PhotoURL != "" || patch.AvatarURL != nil {
		id.AvatarURL = res.PhotoURL
	}
	if res.IDToken != "" {
		id.CredentialToken = res.IDToken
		id.RefreshToken = res.RefreshToken
		id.ExpiresAt = expiryFrom(res.ExpiresIn)
	}
	s.setCurrent(id)
	return id, nil
}

func (s *Service) Refresh(ctx context.Context) (*Identity, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil, common.NewAuthError(common.AuthErrNoSession, "no identity is signed in", nil)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", current.RefreshToken)

	endpoint := s.cfg.SecureTokenURL + "?key=" + url.QueryEscape(s.cfg.IdentityAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, common.NewAuthError(common.AuthErrUnknown, "building refresh request failed", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, common.NewAuthError(common.AuthErrNetwork, "token refresh request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var tkErr toolkitError
		_ = json.NewDecoder(resp.Body).Decode(&tkErr)
		s.logger.Warn("Token refresh rejected; terminating session",
			zap.Int("status", resp.StatusCode),
			zap.String("code", tkErr.Error.Message),
		)
		// A rejected refresh token means the session expired externally.
		_ = s.SignOut(ctx)
		return nil, common.NewAuthError(common.AuthErrInvalidCredentials, tkErr.Error.Message, nil)
	}

	var res struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, common.NewAuthError(common.AuthErrUnknown, "decoding refresh response failed", err)
	}

	id := &Identity{
		UID:             current.UID,
		Email:           current.Email,
		DisplayName:     current.DisplayName,
		AvatarURL:       current.AvatarURL,
		CredentialToken: res.IDToken,
		RefreshToken:    res.RefreshToken,
		ExpiresAt:       expiryFrom(res.ExpiresIn),
	}
	s.setCurrent(id)
	s.logger.Debug("Credential token refreshed", zap.String("email", id.Email))
	return id, nil
}

func (s *Service) OnSessionChange(cb func(*Identity)) (cancel func()) {
	s.mu.Lock()
	subID := s.nextSub
	s.nextSub++
	s.subs[subID] = cb
	current := s.current
	s.mu.Unlock()

	// Deliver the initial state so late subscribers converge immediately.
	cb(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, subID)
		s.mu.Unlock()
	}
}

// Current returns the identity the provider last delivered, or nil.
func (s *Service) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Service) setCurrent(id *Identity) {
	s.mu.Lock()
	s.current = id
	subs := s.snapshotSubs()
	s.mu.Unlock()
	for _, cb := range subs {
		cb(id)
	}
}

// snapshotSubs must be called with s.mu held.
func (s *Service) snapshotSubs() []func(*Identity) {
	subs := make([]func(*Identity), 0, len(s.subs))
	for _, cb := range s.subs {
		subs = append(subs, cb)
	}
	return subs
}

func (s *Service) post(ctx context.Context, action string, payload map[string]interface{}) (*toolkitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.NewAuthError(common.AuthErrUnknown, "encoding request failed", err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", strings.TrimRight(s.cfg.IdentityBaseURL, "/"), action, url.QueryEscape(s.cfg.IdentityAPIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, common.NewAuthError(common.AuthErrUnknown, "building request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, common.NewAuthError(common.AuthErrNetwork, "identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var tkErr toolkitError
		_ = json.NewDecoder(resp.Body).Decode(&tkErr)
		s.logger.Warn("Identity provider rejected request",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode),
			zap.String("code", tkErr.Error.Message),
		)
		return nil, mapToolkitError(tkErr.Error.Message)
	}

	var res toolkitResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, common.NewAuthError(common.AuthErrUnknown, "decoding response failed", err)
	}
	return &res, nil
}

func (s *Service) identityFrom(res *toolkitResponse) *Identity {
	return &Identity{
		UID:             res.LocalID,
		Email:           strings.ToLower(res.Email),
		DisplayName:     res.DisplayName,
		AvatarURL:       res.PhotoURL,
		CredentialToken: res.IDToken,
		RefreshToken:    res.RefreshToken,
		ExpiresAt:       expiryFrom(res.ExpiresIn),
	}
}

func expiryFrom(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return time.Now().Add(time.Duration(secs) * time.Second)
}

// mapToolkitError translates Identity Toolkit error codes into AuthError kinds.
func mapToolkitError(code string) *common.AuthError {
	// Codes occasionally carry a trailing detail, e.g. "WEAK_PASSWORD : ...".
	normalized := code
	if idx := strings.IndexAny(code, " :"); idx > 0 {
		normalized = code[:idx]
	}
	switch normalized {
	case "EMAIL_EXISTS":
		return common.NewAuthError(common.AuthErrEmailInUse, code, nil)
	case "WEAK_PASSWORD":
		return common.NewAuthError(common.AuthErrWeakPassword, code, nil)
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return common.NewAuthError(common.AuthErrInvalidCredentials, code, nil)
	default:
		return common.NewAuthError(common.AuthErrUnknown, code, nil)
	}
}
