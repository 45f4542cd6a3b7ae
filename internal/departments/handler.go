package departments

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

// Handler adds the department-specific endpoints on top of the shared
// taxonomy handler (create, roster management).
type Handler struct {
	*taxonomy.Handler
	repo     *Repository
	resolver *scope.Resolver
}

// NewHandler creates a departments handler.
func NewHandler(shared *taxonomy.Handler, repo *Repository, resolver *scope.Resolver) *Handler {
	return &Handler{Handler: shared, repo: repo, resolver: resolver}
}

// CreateDepartmentRequest is the body for POST /departments.
type CreateDepartmentRequest struct {
	CompanyID uuid.UUID `json:"company_id" binding:"required"`
	Name      string    `json:"name" binding:"required"`
}

// Create handles POST /departments.
func (h *Handler) Create(c *gin.Context) {
	v := viewer.MustFromContext(c)
	var body CreateDepartmentRequest
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
	department := &models.Department{CompanyID: body.CompanyID, Name: body.Name}
	if err := h.repo.Create(c.Request.Context(), department); err != nil {
		response.FromError(c, err, "failed to create department")
		return
	}
	h.Announce(c.Request.Context(), department.CompanyID, department.ID, notify.StatusNew, department)
	response.Created(c, department)
}

// RosterRequest is the body for roster add/remove.
type RosterRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// AddUser handles POST /departments/:id/users.
func (h *Handler) AddUser(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid department id")
		return
	}
	var body RosterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	department, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load department")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, department.CompanyID); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	if err := h.repo.AddUser(c.Request.Context(), id, body.UserID); err != nil {
		response.Internal(c, "failed to add user to department")
		return
	}
	response.OK(c, gin.H{"department_id": id, "user_id": body.UserID})
}

// RemoveUser handles DELETE /departments/:id/users/:user_id.
func (h *Handler) RemoveUser(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid department id")
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	department, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load department")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, department.CompanyID); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	if err := h.repo.RemoveUser(c.Request.Context(), id, userID); err != nil {
		response.Internal(c, "failed to remove user from department")
		return
	}
	response.NoContent(c)
}
