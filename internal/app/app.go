// File: internal/app/app.go
package app

import (
	"context"
	"strings"
	"sync"

	"scholarhub_client/internal/api"
	"scholarhub_client/internal/callback"
	"scholarhub_client/internal/config"
	"scholarhub_client/internal/gateway"
	"scholarhub_client/internal/guard"
	"scholarhub_client/internal/identity"
	"scholarhub_client/internal/prefs"
	"scholarhub_client/internal/role"
	"scholarhub_client/internal/session"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Services bundles the typed backend clients the screens consume.
type Services struct {
	Scholarships *api.ScholarshipService
	Applications *api.ApplicationService
	Reviews      *api.ReviewService
	Blogs        *api.BlogService
	Toppers      *api.TopperService
	Users        *api.UserService
	Analytics    *api.AnalyticsService
	Payments     *api.PaymentService
}

// Guards bundles the three route guards.
type Guards struct {
	SignedIn  *guard.Guard
	Admin     *guard.Guard
	Moderator *guard.Guard
}

// App assembles the client: session store, role resolver, gateway, guards,
// loopback server, refresh job and the typed API services.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	Store     *session.Store
	Resolver  *role.Resolver
	Navigator *Navigator
	Services  Services
	Guards    Guards
	Prefs     *prefs.Store

	transport  *gateway.Transport
	callbackSv *callback.Server
	refreshJob *session.RefreshJob

	cancelSub func()

	// lastEmail tracks the identity the resolver cache belongs to. Session
	// notifications arrive from several goroutines (sign-in callers, the cron
	// refresh, the loopback server), so access is mutex-guarded.
	mu        sync.Mutex
	lastEmail string
}

// sessionCredentials adapts the session store to the gateway's credential source.
type sessionCredentials struct {
	store *session.Store
}

func (c sessionCredentials) CredentialToken() (string, bool) {
	sess := c.store.Current()
	if sess.Identity == nil {
		return "", false
	}
	return sess.Identity.CredentialToken, true
}

// forcedSignOutPolicy is the production reaction to a 401/403: terminate the
// session and send the user to sign-in with the intended path attached.
type forcedSignOutPolicy struct {
	store     *session.Store
	navigator *Navigator
	logger    *zap.Logger
}

func (p *forcedSignOutPolicy) OnUnauthorized(intended string) {
	// SignOutUser never errors for an already-absent session, so a 401 racing
	// a sign-out cannot loop.
	if err := p.store.SignOutUser(context.Background()); err != nil {
		p.logger.Error("Forced sign-out failed", zap.Error(err))
	}
	p.navigator.RedirectToLogin(intended)
}

// New wires the client together. The session store must already hold the
// provider subscription; everything else hangs off it.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	provider identity.Provider,
	store *session.Store,
	callbackSv *callback.Server,
	prefsStore *prefs.Store,
) *App {
	navigator := NewNavigator(logger)

	policy := &forcedSignOutPolicy{store: store, navigator: navigator, logger: logger.Named("UnauthorizedPolicy")}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestRateLimit), cfg.RequestRateBurst)
	transport := gateway.NewTransport(nil, sessionCredentials{store: store}, policy, limiter, logger)

	client := api.NewClient(cfg, transport, logger)
	users := api.NewUserService(client)
	resolver := role.NewResolver(users, logger)

	a := &App{
		cfg:       cfg,
		logger:    logger.Named("App"),
		Store:     store,
		Resolver:  resolver,
		Navigator: navigator,
		Prefs:     prefsStore,
		Services: Services{
			Scholarships: api.NewScholarshipService(client),
			Applications: api.NewApplicationService(client),
			Reviews:      api.NewReviewService(client),
			Blogs:        api.NewBlogService(client),
			Toppers:      api.NewTopperService(client),
			Users:        users,
			Analytics:    api.NewAnalyticsService(client),
			Payments:     api.NewPaymentService(client, callbackSv, callback.PaymentReturnRoute, nil, logger),
		},
		Guards: Guards{
			SignedIn:  guard.NewSignedIn(store, navigator, logger),
			Admin:     guard.NewAdmin(store, resolver, navigator, logger),
			Moderator: guard.NewModerator(store, resolver, navigator, logger),
		},
		transport:  transport,
		callbackSv: callbackSv,
		refreshJob: session.NewRefreshJob(provider, store, logger, cfg),
	}

	// One subscription keeps the gateway latch and role cache in step with
	// identity changes.
	a.cancelSub = store.Subscribe(a.onSessionChange)
	return a
}

func (a *App) onSessionChange(sess session.Session) {
	if sess.IsResolving {
		return
	}
	if sess.Identity == nil {
		a.mu.Lock()
		a.lastEmail = ""
		a.mu.Unlock()
		return
	}
	email := strings.ToLower(sess.Identity.Email)
	a.mu.Lock()
	changed := email != a.lastEmail
	a.lastEmail = email
	a.mu.Unlock()
	if changed {
		// A different identity must never see the previous one's cached role.
		a.Resolver.Reset()
	}
	a.transport.Rearm()
}

// Start launches the loopback server and the credential refresh job.
func (a *App) Start() error {
	go func() {
		if err := a.callbackSv.Start(); err != nil {
			a.logger.Error("Loopback callback server terminated", zap.Error(err))
		}
	}()
	return a.refreshJob.SetupAndStart()
}

// Shutdown stops background work and tears down the provider subscription.
func (a *App) Shutdown(ctx context.Context) error {
	a.refreshJob.Stop()
	if a.cancelSub != nil {
		a.cancelSub()
		a.cancelSub = nil
	}
	a.Store.Close()
	return a.callbackSv.Shutdown(ctx)
}

// SignInFederated runs the provider-hosted flow and upserts the resulting
// identity into backend user records (idempotent), then replays the intended
// destination.
func (a *App) SignInFederated(ctx context.Context) error {
	id, err := a.Store.SignInFederated(ctx)
	if err != nil {
		return err
	}
	if _, err := a.Services.Users.Upsert(ctx, id); err != nil {
		a.logger.Warn("User upsert after federated sign-in failed", zap.Error(err))
		return err
	}
	a.Navigator.Go(a.Navigator.ConsumeIntended())
	return nil
}

// SignInUser signs in with email/password, records the user backend-side and
// replays the intended destination.
func (a *App) SignInUser(ctx context.Context, email, password string) error {
	if err := a.Store.SignInUser(ctx, email, password); err != nil {
		return err
	}
	if id := a.Store.Current().Identity; id != nil {
		if _, err := a.Services.Users.Upsert(ctx, id); err != nil {
			a.logger.Warn("User upsert after sign-in failed", zap.Error(err))
		}
	}
	a.Navigator.Go(a.Navigator.ConsumeIntended())
	return nil
}
