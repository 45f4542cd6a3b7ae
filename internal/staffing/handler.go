package staffing

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// Handler handles staffing HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *scope.Resolver
}

// NewHandler creates a staffing handler.
func NewHandler(repo *Repository, resolver *scope.Resolver) *Handler {
	return &Handler{repo: repo, resolver: resolver}
}

// PlacementRequest is the body for division placement add/remove.
type PlacementRequest struct {
	UserID     uuid.UUID `json:"user_id" binding:"required"`
	DivisionID uuid.UUID `json:"division_id" binding:"required"`
}

// PlaceInDivision handles POST /events/:id/staff/divisions.
func (h *Handler) PlaceInDivision(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body PlacementRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id and division_id required")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, eventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	if err := h.repo.PlaceInDivision(c.Request.Context(), eventID, body.UserID, body.DivisionID); err != nil {
		response.Internal(c, "failed to place user in division")
		return
	}
	response.OK(c, gin.H{"event_id": eventID, "user_id": body.UserID, "division_id": body.DivisionID})
}

// RemoveFromDivision handles DELETE /events/:id/staff/divisions.
func (h *Handler) RemoveFromDivision(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body PlacementRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id and division_id required")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, eventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	if err := h.repo.RemoveFromDivision(c.Request.Context(), eventID, body.UserID, body.DivisionID); err != nil {
		response.Internal(c, "failed to remove user from division")
		return
	}
	response.NoContent(c)
}

// AssignmentRequest is the body for availability updates.
type AssignmentRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Active *bool     `json:"active" binding:"required"`
}

// SetAssignment handles PUT /events/:id/staff/assignment.
func (h *Handler) SetAssignment(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body AssignmentRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Active == nil {
		response.BadRequest(c, "user_id and active required")
		return
	}
	if _, err := h.resolver.ResolveEvent(c.Request.Context(), v, eventID); err != nil {
		response.FromError(c, err, "failed to resolve event")
		return
	}
	if err := h.repo.SetAssignment(c.Request.Context(), eventID, body.UserID, *body.Active); err != nil {
		response.Internal(c, "failed to update assignment")
		return
	}
	response.OK(c, gin.H{"event_id": eventID, "user_id": body.UserID, "active": *body.Active})
}
