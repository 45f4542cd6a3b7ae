package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/pkg/response"
	"github.com/crowdpulse/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=6"`
	FullName  string     `json:"full_name" binding:"required"`
	CompanyID uuid.UUID  `json:"company_id" binding:"required"`
	Role      *int       `json:"role"` // optional, defaults to workforce staff
	RegionID  *uuid.UUID `json:"region_id"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token     string       `json:"token"`
	UserID    uuid.UUID    `json:"user_id"`
	Email     string       `json:"email"`
	FullName  string       `json:"full_name"`
	Role      roles.RoleID `json:"role"`
	CompanyID uuid.UUID    `json:"company_id"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}

	role := roles.RoleWorkforceStaff
	if req.Role != nil {
		role = roles.RoleID(*req.Role)
	}
	if err := h.repo.SetCompanyRole(c.Request.Context(), user.ID, req.CompanyID, role, req.RegionID); err != nil {
		response.Internal(c, "failed to assign company role")
		return
	}

	var regionIDs []uuid.UUID
	if req.RegionID != nil {
		regionIDs = []uuid.UUID{*req.RegionID}
	}
	token, err := h.jwt.Generate(user.ID, user.Email, role, req.CompanyID, regionIDs)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{
		Token: token, UserID: user.ID, Email: user.Email, FullName: user.FullName,
		Role: role, CompanyID: req.CompanyID,
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	ucr, err := h.repo.GetCompanyRole(c.Request.Context(), user.ID)
	if err != nil {
		response.Forbidden(c, "no company role assigned")
		return
	}

	var regionIDs []uuid.UUID
	if ucr.RegionID != nil {
		regionIDs = []uuid.UUID{*ucr.RegionID}
	}
	token, err := h.jwt.Generate(user.ID, user.Email, ucr.RoleID, ucr.CompanyID, regionIDs)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{
		Token: token, UserID: user.ID, Email: user.Email, FullName: user.FullName,
		Role: ucr.RoleID, CompanyID: ucr.CompanyID,
	})
}
