package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/viewer"
)

func runGate(t *testing.T, gate gin.HandlerFunc, v *viewer.Viewer) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	if v != nil {
		c.Set(viewer.ContextKey, *v)
	}
	gate(c)
	if !c.IsAborted() {
		return http.StatusOK
	}
	return w.Code
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	gate := RequireRole(roles.RoleAdmin, roles.RoleOperationsManager)
	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleOperationsManager, CompanyID: uuid.New()}
	assert.Equal(t, http.StatusOK, runGate(t, gate, &v))
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	gate := RequireRole(roles.RoleAdmin)
	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleFieldStaff, CompanyID: uuid.New()}
	assert.Equal(t, http.StatusForbidden, runGate(t, gate, &v))
}

func TestRequireRoleRejectsMissingViewer(t *testing.T) {
	gate := RequireRole(roles.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, runGate(t, gate, nil))
}

func TestRequireTierAtMost(t *testing.T) {
	gate := RequireTierAtMost(roles.TierGlobal)

	global := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleGlobalManager, CompanyID: uuid.New()}
	assert.Equal(t, http.StatusOK, runGate(t, gate, &global))

	local := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleAdmin, CompanyID: uuid.New()}
	assert.Equal(t, http.StatusForbidden, runGate(t, gate, &local))
}
