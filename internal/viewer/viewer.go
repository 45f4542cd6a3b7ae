// Package viewer carries the authenticated caller's identity, role, and
// company as an explicit value constructed once per request. Components take
// it as a parameter; nothing reads it from ambient state.
package viewer

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/roles"
)

// ContextKey is the gin context key under which the Viewer is stored by the
// JWT middleware.
const ContextKey = "viewer"

// Viewer identifies the authenticated caller for one request.
type Viewer struct {
	UserID    uuid.UUID    `json:"user_id"`
	Role      roles.RoleID `json:"role"`
	CompanyID uuid.UUID    `json:"company_id"`
	RegionIDs []uuid.UUID  `json:"region_ids,omitempty"`
}

// FromContext extracts the Viewer set by the JWT middleware.
func FromContext(c *gin.Context) (Viewer, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return Viewer{}, false
	}
	vv, ok := v.(Viewer)
	return vv, ok
}

// MustFromContext extracts the Viewer; panics when the middleware did not
// run. Use only behind the JWT middleware.
func MustFromContext(c *gin.Context) Viewer {
	return c.MustGet(ContextKey).(Viewer)
}
