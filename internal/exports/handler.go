package exports

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// Handler serves export history and status polling for queued exports.
type Handler struct {
	repo     *Repository
	resolver *scope.Resolver
}

// NewHandler creates an exports handler.
func NewHandler(repo *Repository, resolver *scope.Resolver) *Handler {
	return &Handler{repo: repo, resolver: resolver}
}

// ListByEvent handles GET /events/:id/exports.
func (h *Handler) ListByEvent(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, eventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	logs, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load exports")
		return
	}
	response.OK(c, logs)
}

// Get handles GET /exports/:id.
func (h *Handler) Get(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	log, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load export")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, log.EventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	response.OK(c, log)
}
