// Package server exposes the tenant directory over HTTP with gin. Every
// request carries a session cookie and is bound to the tenant named by its
// host.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/internal/hostname"
	"github.com/mesh-intelligence/echosign/internal/reflection"
)

const (
	// DefaultAddr is the listen address when Config.Addr is empty.
	DefaultAddr = ":8080"

	// SessionCookie names the cookie holding the opaque session id.
	SessionCookie = "echosign_session"

	// HeaderSubdomain carries the resolved host label. A fronting proxy may
	// also set it on requests whose host does not name a tenant.
	HeaderSubdomain = "X-Subdomain"

	sessionMaxAge   = 365 * 24 * 60 * 60
	shutdownTimeout = 10 * time.Second
)

// Config holds the HTTP settings.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" mapstructure:"addr"`
	DevSuffix    string `json:"dev_suffix" yaml:"dev_suffix" mapstructure:"dev_suffix"`
	CookieDomain string `json:"cookie_domain,omitempty" yaml:"cookie_domain,omitempty" mapstructure:"cookie_domain"`
	CookieSecure bool   `json:"cookie_secure" yaml:"cookie_secure" mapstructure:"cookie_secure"`
}

// Server serves the JSON API.
type Server struct {
	dir       *directory.Directory
	reflector reflection.Reflector
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
	engine    *gin.Engine
}

// New builds a Server and its routes. A nil reflector answers every
// reflection with the provider-error fallback.
func New(dir *directory.Directory, reflector reflection.Reflector, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reflector == nil {
		reflector = reflection.NewService(nil)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.DevSuffix == "" {
		cfg.DevSuffix = hostname.DefaultDevSuffix
	}
	s := &Server{
		dir:       dir,
		reflector: reflector,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.POST("/reflect", s.reflect)

	api.Use(s.session(), s.host())
	api.GET("/signup/check", s.checkSubdomain)
	api.POST("/signup", s.signup)
	api.POST("/logout", s.logout)
	api.GET("/session", s.currentSession)

	api.GET("/wall", s.wall)
	api.GET("/featured", s.featured)

	api.GET("/spaces", s.listSpaces)
	api.POST("/spaces", s.createSpace)
	api.GET("/spaces/:id", s.getSpace)
	api.PATCH("/spaces/:id", s.updateSpace)
	api.DELETE("/spaces/:id", s.deleteSpace)
	api.GET("/spaces/:id/stats", s.spaceStats)
	api.GET("/spaces/:id/entries", s.listEntries)
	api.POST("/spaces/:id/entries", s.sign)

	api.DELETE("/entries/:id", s.deleteEntry)
	api.PATCH("/tenant", s.updateTenant)

	dash := api.Group("/dashboard")
	dash.GET("/stats", s.dashboardStats)
	dash.GET("/analytics", s.dashboardAnalytics)
	dash.GET("/entries", s.dashboardEntries)
	dash.GET("/events", s.dashboardEvents)

	return r
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
