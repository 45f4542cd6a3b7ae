package events

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/internal/notify"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

var validStatuses = map[string]bool{
	models.EventUpcoming:   true,
	models.EventInProgress: true,
	models.EventOnHold:     true,
	models.EventCompleted:  true,
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *scope.Resolver
	notifier *notify.Notifier
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, resolver *scope.Resolver, notifier *notify.Notifier) *Handler {
	return &Handler{repo: repo, resolver: resolver, notifier: notifier}
}

// CreateEventRequest is the body for POST /events.
type CreateEventRequest struct {
	CompanyID uuid.UUID  `json:"company_id" binding:"required"`
	Name      string     `json:"name" binding:"required"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	v := viewer.MustFromContext(c)
	var body CreateEventRequest
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
	event := &models.Event{
		CompanyID: body.CompanyID,
		Name:      body.Name,
		Status:    models.EventUpcoming,
		StartsAt:  body.StartsAt,
		EndsAt:    body.EndsAt,
	}
	if err := h.repo.Create(c.Request.Context(), event); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	h.notifier.EntityChanged(event.ID, notify.TypeEvent, notify.StatusNew, true, event)
	response.Created(c, event)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, id); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	event, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load event")
		return
	}
	response.OK(c, event)
}

// ListByCompany handles GET /companies/:id/events.
func (h *Handler) ListByCompany(c *gin.Context) {
	v := viewer.MustFromContext(c)
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, companyID); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	events, err := h.repo.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, events)
}

// UpdateEventRequest is the body for PUT /events/:id.
type UpdateEventRequest struct {
	Name     string     `json:"name" binding:"required"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body UpdateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, id); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	event := &models.Event{ID: id, Name: strings.TrimSpace(body.Name), StartsAt: body.StartsAt, EndsAt: body.EndsAt}
	if err := h.repo.Update(c.Request.Context(), event); err != nil {
		response.FromError(c, err, "failed to update event")
		return
	}
	h.notifier.EntityChanged(id, notify.TypeEvent, notify.StatusUpdate, false, event)
	response.OK(c, event)
}

// UpdateStatusRequest is the body for PATCH /events/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /events/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil || !validStatuses[body.Status] {
		response.BadRequest(c, "status must be one of UPCOMING, IN_PROGRESS, ON_HOLD, COMPLETED")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, id); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, body.Status); err != nil {
		response.FromError(c, err, "failed to update status")
		return
	}
	h.notifier.EntityChanged(id, notify.TypeEvent, notify.StatusUpdate, false, gin.H{"id": id, "status": body.Status})
	response.OK(c, gin.H{"id": id, "status": body.Status})
}

// Delete handles DELETE /events/:id (soft delete).
func (h *Handler) Delete(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, id); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to delete event")
		return
	}
	h.notifier.EntityChanged(id, notify.TypeEvent, notify.StatusDelete, false, gin.H{"id": id})
	response.NoContent(c)
}
