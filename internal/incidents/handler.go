package incidents

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/internal/notify"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// Handler handles incident HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *scope.Resolver
	notifier *notify.Notifier
}

// NewHandler creates an incidents handler.
func NewHandler(repo *Repository, resolver *scope.Resolver, notifier *notify.Notifier) *Handler {
	return &Handler{repo: repo, resolver: resolver, notifier: notifier}
}

// CreateIncidentRequest is the body for POST /events/:id/incidents.
type CreateIncidentRequest struct {
	IncidentTypeID *uuid.UUID  `json:"incident_type_id"`
	DepartmentID   *uuid.UUID  `json:"department_id"`
	DivisionIDs    []uuid.UUID `json:"division_ids"`
	Description    string      `json:"description" binding:"required"`
	RequestStatus  *string     `json:"request_status"`
}

// Create handles POST /events/:id/incidents.
func (h *Handler) Create(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body CreateIncidentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "description required")
		return
	}
	body.Description = strings.TrimSpace(body.Description)
	if body.Description == "" {
		response.BadRequest(c, "description required")
		return
	}
	companyID, err := h.resolver.ResolveEvent(c.Request.Context(), v, eventID)
	if err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	incident := &models.Incident{
		EventID:        eventID,
		CompanyID:      companyID,
		IncidentTypeID: body.IncidentTypeID,
		DepartmentID:   body.DepartmentID,
		DivisionIDs:    body.DivisionIDs,
		Description:    body.Description,
		Status:         models.IncidentOpen,
		RequestStatus:  body.RequestStatus,
		CreatedBy:      &v.UserID,
	}
	if err := h.repo.Create(c.Request.Context(), incident); err != nil {
		response.Internal(c, "failed to create incident")
		return
	}
	h.notifier.EntityChanged(eventID, notify.TypeIncident, notify.StatusNew, true, incident)
	response.Created(c, incident)
}

// ListByEvent handles GET /events/:id/incidents.
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
	incidents, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load incidents")
		return
	}
	response.OK(c, incidents)
}

// Resolve handles PATCH /incidents/:id/resolve.
func (h *Handler) Resolve(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid incident id")
		return
	}
	incident, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load incident")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, incident.EventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	resolved, err := h.repo.Resolve(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to resolve incident")
		return
	}
	h.notifier.EntityChanged(incident.EventID, notify.TypeIncident, notify.StatusUpdate, false, resolved)
	response.OK(c, resolved)
}

// Delete handles DELETE /incidents/:id (soft delete).
func (h *Handler) Delete(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid incident id")
		return
	}
	incident, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load incident")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, incident.EventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to delete incident")
		return
	}
	h.notifier.EntityChanged(incident.EventID, notify.TypeIncident, notify.StatusDelete, false, gin.H{"id": id})
	response.NoContent(c)
}
