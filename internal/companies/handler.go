package companies

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// Handler handles company HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *scope.Resolver
}

// NewHandler creates a companies handler.
func NewHandler(repo *Repository, resolver *scope.Resolver) *Handler {
	return &Handler{repo: repo, resolver: resolver}
}

// CreateCompanyRequest is the body for POST /companies.
type CreateCompanyRequest struct {
	Name        string     `json:"name" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Category    string     `json:"category"`
	RegionID    *uuid.UUID `json:"region_id"`
	DemoCompany bool       `json:"demo_company"`
}

// Create handles POST /companies. Sub-company creation is scope-checked
// against the parent.
func (h *Handler) Create(c *gin.Context) {
	v := viewer.MustFromContext(c)
	var body CreateCompanyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	if body.ParentID != nil {
		if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, *body.ParentID); err != nil {
			response.FromError(c, err, "failed to resolve parent company")
			return
		}
	}
	company := &models.Company{
		Name:        body.Name,
		ParentID:    body.ParentID,
		Category:    body.Category,
		RegionID:    body.RegionID,
		DemoCompany: body.DemoCompany,
	}
	if err := h.repo.Create(c.Request.Context(), company); err != nil {
		response.FromError(c, err, "failed to create company")
		return
	}
	response.Created(c, company)
}

// Get handles GET /companies/:id.
func (h *Handler) Get(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, id); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	company, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load company")
		return
	}
	response.OK(c, company)
}

// ListSubCompanies handles GET /companies/:id/sub-companies.
func (h *Handler) ListSubCompanies(c *gin.Context) {
	v := viewer.MustFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	if _, err := h.resolver.ResolveCompany(c.Request.Context(), v, id); err != nil {
		response.FromError(c, err, "failed to resolve company")
		return
	}
	subs, err := h.repo.ListSubCompanies(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load sub-companies")
		return
	}
	response.OK(c, subs)
}
