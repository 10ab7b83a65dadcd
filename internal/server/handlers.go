package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/echosign/internal/directory"
	"github.com/mesh-intelligence/echosign/internal/reflection"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// reflect always answers 200 with a reflection; failures yield the
// fallback sentences.
func (s *Server) reflect(c *gin.Context) {
	var req reflection.ReflectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, reflection.ReflectResponse{Reflection: reflection.FallbackError})
		return
	}
	c.JSON(http.StatusOK, reflection.ReflectResponse{
		Reflection: s.reflector.Reflect(c.Request.Context(), req.MemoryText),
	})
}

func (s *Server) checkSubdomain(c *gin.Context) {
	sub, available, err := s.dir.CheckSubdomain(c.Request.Context(), c.Query("subdomain"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"subdomain": sub, "available": available})
}

func (s *Server) signup(c *gin.Context) {
	var req directory.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.dir.Signup(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, res)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.dir.Logout(c.Request.Context(), sessionFrom(c).SessionID); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"loggedOut": true})
}

// sessionView is the body of GET /api/session.
type sessionView struct {
	User      *types.User   `json:"user"`
	Tenant    *types.Tenant `json:"tenant"`
	Subdomain string        `json:"subdomain"`
	IsOwner   bool          `json:"isOwner"`
}

func (s *Server) currentSession(c *gin.Context) {
	user, err := s.dir.CurrentUser(c.Request.Context(), sessionFrom(c).SessionID)
	if err != nil {
		s.fail(c, err)
		return
	}
	tenant := tenantFrom(c)
	ok(c, sessionView{
		User:      user,
		Tenant:    tenant,
		Subdomain: c.GetString(ctxSubdomain),
		IsOwner:   directory.IsOwner(user, tenant),
	})
}

// wallView is the body of GET /api/wall.
type wallView struct {
	Tenant   types.Tenant           `json:"tenant"`
	Spaces   []types.Space          `json:"spaces"`
	Entries  []types.SignatureEntry `json:"entries"`
	Featured *types.SignatureEntry  `json:"featured"`
}

func (s *Server) wall(c *gin.Context) {
	tenant, found := requireTenant(c)
	if !found {
		return
	}
	ctx := c.Request.Context()

	spaces, err := s.dir.ListSpacesByTenant(ctx, tenant.ID, types.VisibilityPublic)
	if err != nil {
		s.fail(c, err)
		return
	}
	entries, err := s.dir.ListPublicEntriesByTenant(ctx, tenant.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	featured, err := s.dir.PickFeaturedMemory(ctx, tenant.ID, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.dir.RecordEvent(ctx, tenant.ID, types.EventViewWall, nil)

	ok(c, wallView{Tenant: *tenant, Spaces: spaces, Entries: entries, Featured: featured})
}

func (s *Server) featured(c *gin.Context) {
	tenant, found := requireTenant(c)
	if !found {
		return
	}
	entry, err := s.dir.PickFeaturedMemory(c.Request.Context(), tenant.ID, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"featured": entry})
}

// listSpaces returns the host tenant's spaces. Visitors see public spaces
// only; the owner may filter with ?visibility=.
func (s *Server) listSpaces(c *gin.Context) {
	tenant, found := requireTenant(c)
	if !found {
		return
	}
	visibility := types.VisibilityPublic
	if s.isOwner(c, tenant) {
		v, err := types.ParseVisibility(c.Query("visibility"), "")
		if err != nil {
			s.fail(c, err)
			return
		}
		visibility = v
	}
	spaces, err := s.dir.ListSpacesByTenant(c.Request.Context(), tenant.ID, visibility)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, spaces)
}

// createSpaceRequest is the body of POST /api/spaces.
type createSpaceRequest struct {
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Visibility  types.Visibility `json:"visibility"`
}

func (s *Server) createSpace(c *gin.Context) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return
	}
	var req createSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	visibility, err := types.ParseVisibility(string(req.Visibility), types.VisibilityPublic)
	if err != nil {
		s.fail(c, err)
		return
	}
	space, err := s.dir.CreateSpace(c.Request.Context(), tenant.ID, req.Name, req.Slug, visibility, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, space)
}

func (s *Server) getSpace(c *gin.Context) {
	space, found := s.visibleSpace(c)
	if !found {
		return
	}
	ok(c, space)
}

func (s *Server) updateSpace(c *gin.Context) {
	space, allowed := s.ownedSpace(c)
	if !allowed {
		return
	}
	var upd types.SpaceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := s.dir.UpdateSpace(c.Request.Context(), space.ID, upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, updated)
}

func (s *Server) deleteSpace(c *gin.Context) {
	space, allowed := s.ownedSpace(c)
	if !allowed {
		return
	}
	if err := s.dir.DeleteSpace(c.Request.Context(), space.ID); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": space.ID})
}

func (s *Server) spaceStats(c *gin.Context) {
	space, found := s.visibleSpace(c)
	if !found {
		return
	}
	stats, err := s.dir.ComputeSpaceStats(c.Request.Context(), space.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, stats)
}

// listEntries returns the entries of a space the viewer may see and
// records a view_space event.
func (s *Server) listEntries(c *gin.Context) {
	space, found := s.visibleSpace(c)
	if !found {
		return
	}
	ctx := c.Request.Context()
	entries, err := s.dir.ListEntriesForViewer(ctx, space.ID, sessionFrom(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.dir.RecordEvent(ctx, space.TenantID, types.EventViewSpace, map[string]any{types.MetaSpaceID: space.ID})
	ok(c, entries)
}

func (s *Server) sign(c *gin.Context) {
	space, found := s.visibleSpace(c)
	if !found {
		return
	}
	var req directory.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.SpaceID = space.ID
	res, err := s.dir.Sign(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, res)
}

func (s *Server) deleteEntry(c *gin.Context) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return
	}
	ctx := c.Request.Context()
	entry, err := s.dir.LookupEntry(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if entry.TenantID != tenant.ID {
		c.AbortWithStatusJSON(http.StatusNotFound, Failure(ErrCodeNotFound, "entry not found"))
		return
	}
	if err := s.dir.SoftDeleteEntry(ctx, entry.ID); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": entry.ID})
}

func (s *Server) updateTenant(c *gin.Context) {
	tenant, found := requireTenant(c)
	if !found {
		return
	}
	var upd types.TenantUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := s.dir.UpdateTenant(c.Request.Context(), sessionFrom(c), tenant.ID, upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, updated)
}

func (s *Server) dashboardStats(c *gin.Context) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return
	}
	stats, err := s.dir.TenantStats(c.Request.Context(), tenant.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, stats)
}

func (s *Server) dashboardAnalytics(c *gin.Context) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return
	}
	report, err := s.dir.SpaceAnalytics(c.Request.Context(), tenant.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, report)
}

func (s *Server) dashboardEntries(c *gin.Context) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return
	}
	entries, err := s.dir.ListEntriesByTenant(c.Request.Context(), tenant.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, entries)
}

func (s *Server) dashboardEvents(c *gin.Context) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return
	}
	ctx := c.Request.Context()
	events, err := s.dir.QueryEventsByTenant(ctx, tenant.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	counts, err := s.dir.CountEventsByType(ctx, tenant.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"events": events, "counts": counts})
}

// requireTenant aborts with 404 when the request is not bound to a tenant.
func requireTenant(c *gin.Context) (*types.Tenant, bool) {
	tenant := tenantFrom(c)
	if tenant == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, Failure(ErrCodeNoTenant, "no tenant for this host"))
		return nil, false
	}
	return tenant, true
}

// requireOwner aborts with 403 unless the session user owns the host
// tenant.
func (s *Server) requireOwner(c *gin.Context) (*types.Tenant, bool) {
	tenant, found := requireTenant(c)
	if !found {
		return nil, false
	}
	if !s.isOwner(c, tenant) {
		c.AbortWithStatusJSON(http.StatusForbidden, Failure(ErrCodeForbidden, "owner access required"))
		return nil, false
	}
	return tenant, true
}

func (s *Server) isOwner(c *gin.Context, tenant *types.Tenant) bool {
	userID := sessionFrom(c).UserID
	if userID == "" {
		return false
	}
	user, err := s.dir.GetUser(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return directory.IsOwner(user, tenant)
}

// visibleSpace loads the :id space. A space of another tenant than the
// host's, or a private space seen by anyone but its owner, is reported as
// not found.
func (s *Server) visibleSpace(c *gin.Context) (*types.Space, bool) {
	ctx := c.Request.Context()
	space, err := s.dir.GetSpace(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}

	tenant := tenantFrom(c)
	if tenant != nil && tenant.ID != space.TenantID {
		c.AbortWithStatusJSON(http.StatusNotFound, Failure(ErrCodeNotFound, "space not found"))
		return nil, false
	}
	if space.Visibility == types.VisibilityPrivate {
		if tenant == nil {
			if tenant, err = s.dir.GetTenant(ctx, space.TenantID); err != nil {
				s.fail(c, err)
				return nil, false
			}
		}
		if !s.isOwner(c, tenant) {
			c.AbortWithStatusJSON(http.StatusNotFound, Failure(ErrCodeNotFound, "space not found"))
			return nil, false
		}
	}
	return space, true
}

// ownedSpace loads the :id space and requires the session user to own the
// host tenant it belongs to.
func (s *Server) ownedSpace(c *gin.Context) (*types.Space, bool) {
	tenant, allowed := s.requireOwner(c)
	if !allowed {
		return nil, false
	}
	space, err := s.dir.GetSpace(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	if space.TenantID != tenant.ID {
		c.AbortWithStatusJSON(http.StatusNotFound, Failure(ErrCodeNotFound, "space not found"))
		return nil, false
	}
	return space, true
}
