// File: internal/callback/server.go
package callback

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"scholarhub_client/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Routes served by the loopback server. Browser round-trips (federated
// sign-in, payment checkout) land here.
const (
	OAuthRoute         = "/oauth2/callback"
	PaymentReturnRoute = "/payment/return"
	PaymentCancelRoute = "/payment/cancel"
)

// Server is the loopback HTTP server that catches redirects from the system
// browser. One instance per process; waiters register per route and receive
// the query parameters of the next request on it.
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger

	mu      sync.Mutex
	waiters map[string][]chan url.Values
}

// NewServer creates the loopback server and registers its routes.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:     cfg,
		router:  router,
		logger:  logger.Named("CallbackServer"),
		waiters: make(map[string][]chan url.Values),
	}

	for _, route := range []string{OAuthRoute, PaymentReturnRoute, PaymentCancelRoute} {
		route := route
		router.GET(route, func(c *gin.Context) {
			s.deliver(route, c.Request.URL.Query())
			c.Data(http.StatusOK, "text/html; charset=utf-8",
				[]byte("<html><body><p>You can close this window and return to ScholarHub.</p></body></html>"))
		})
	}

	s.httpServer = &http.Server{
		Addr:         cfg.CallbackAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Start begins serving on the loopback address. It blocks until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Loopback callback server starting", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Loopback callback server failed", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown stops the server and releases all pending waiters with an error.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for route, chans := range s.waiters {
		for _, ch := range chans {
			close(ch)
		}
		delete(s.waiters, route)
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// RedirectURL returns the absolute loopback URL for a route.
func (s *Server) RedirectURL(route string) string {
	return s.cfg.CallbackBaseURL() + route
}

// Await blocks until the route receives a request or ctx is done.
func (s *Server) Await(ctx context.Context, route string) (url.Values, error) {
	ch := make(chan url.Values, 1)
	s.mu.Lock()
	s.waiters[route] = append(s.waiters[route], ch)
	s.mu.Unlock()

	select {
	case params, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("callback server shut down while waiting on %s", route)
		}
		return params, nil
	case <-ctx.Done():
		s.remove(route, ch)
		return nil, ctx.Err()
	}
}

func (s *Server) deliver(route string, params url.Values) {
	s.mu.Lock()
	chans := s.waiters[route]
	delete(s.waiters, route)
	s.mu.Unlock()

	s.logger.Debug("Callback received", zap.String("route", route))
	for _, ch := range chans {
		ch <- params
		close(ch)
	}
}

func (s *Server) remove(route string, target chan url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chans := s.waiters[route]
	for i, ch := range chans {
		if ch == target {
			s.waiters[route] = append(chans[:i], chans[i+1:]...)
			return
		}
	}
}
