package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given role ids.
func RequireRole(allowed ...roles.RoleID) gin.HandlerFunc {
	set := roles.NewRoleSet(allowed...)
	return func(c *gin.Context) {
		v, ok := viewer.FromContext(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !set.Contains(v.Role) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTierAtMost allows only roles at or above the given visibility tier
// (platform < global < local).
func RequireTierAtMost(maxTier roles.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := viewer.FromContext(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if roles.TierOf(v.Role) > maxTier {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
