package incidenttypes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/internal/notify"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/taxonomy"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// Handler adds the type-specific endpoints on top of the shared taxonomy
// handler (create with core-type linking, pin toggle).
type Handler struct {
	*taxonomy.Handler
	repo     *Repository
	resolver *scope.Resolver
}

// NewHandler creates an incident types handler.
func NewHandler(shared *taxonomy.Handler, repo *Repository, resolver *scope.Resolver) *Handler {
	return &Handler{Handler: shared, repo: repo, resolver: resolver}
}

// CreateTypeRequest is the body for POST /incident-types.
type CreateTypeRequest struct {
	CompanyID uuid.UUID `json:"company_id" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	Pinned    bool      `json:"pinned"`
}

// Create handles POST /incident-types.
func (h *Handler) Create(c *gin.Context) {
	v := viewer.MustFromContext(c)
	var body CreateTypeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "company_id and name required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		response.BadRequest(c, "name required")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, body.CompanyID); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	t := &models.IncidentType{CompanyID: body.CompanyID, Name: body.Name, Pinned: body.Pinned}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		response.FromError(c, err, "failed to create incident type")
		return
	}
	h.Announce(c.Request.Context(), t.CompanyID, t.ID, notify.StatusNew, t)
	response.Created(c, t)
}

// TogglePin handles PATCH /incident-types/:id/pin.
func (h *Handler) TogglePin(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid incident type id")
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load incident type")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, t.CompanyID); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	pinned, err := h.repo.TogglePin(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to toggle pin")
		return
	}
	h.Announce(c.Request.Context(), t.CompanyID, id, notify.StatusUpdate, gin.H{"id": id, "pinned": pinned})
	response.OK(c, gin.H{"id": id, "pinned": pinned})
}
