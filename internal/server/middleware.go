package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/internal/hostname"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

// Gin context keys.
const (
	ctxSession   = "echosign.session"
	ctxTenant    = "echosign.tenant"
	ctxSubdomain = "echosign.subdomain"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("host", c.Request.Host),
			zap.String("subdomain", c.GetString(ctxSubdomain)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// session reads the session cookie, issuing a fresh id when it is absent,
// and resolves the session's current user and tenant.
func (s *Server) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			id, err = s.dir.NewSessionID()
			if err != nil {
				s.fail(c, err)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionMaxAge, "/", s.cfg.CookieDomain, s.cfg.CookieSecure, true)
		}

		sess, err := s.dir.Session(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Set(ctxSession, sess)
		c.Next()
	}
}

// host resolves the request host to a tenant. An empty label falls back to
// the X-Subdomain request header, then to the session's current tenant.
func (s *Server) host() gin.HandlerFunc {
	return func(c *gin.Context) {
		label := hostname.Resolve(c.Request.Host, s.cfg.DevSuffix)
		if label == "" {
			label = directory.NormalizeSubdomain(c.GetHeader(HeaderSubdomain))
		}
		c.Set(ctxSubdomain, label)
		if label != "" {
			c.Header(HeaderSubdomain, label)
		}

		tenant, err := s.dir.ResolveHostToTenant(c.Request.Context(), sessionFrom(c), label)
		if err != nil {
			s.fail(c, err)
			return
		}
		if tenant != nil {
			c.Set(ctxTenant, tenant)
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) types.SessionContext {
	sess, _ := c.Get(ctxSession)
	sc, _ := sess.(types.SessionContext)
	return sc
}

func tenantFrom(c *gin.Context) *types.Tenant {
	t, _ := c.Get(ctxTenant)
	tenant, _ := t.(*types.Tenant)
	return tenant
}

func zapRequest(c *gin.Context, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	}
}
