package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludedRolesCoversEveryKnownRole(t *testing.T) {
	t.Parallel()

	for _, r := range KnownRoles {
		set := ExcludedRoles(r)
		require.NotEmpty(t, set, "role %d must have an exclusion set", r)
		// Administrative roles are excluded for every viewer.
		for _, admin := range []RoleID{RoleSuperAdmin, RolePlatformManager, RoleGlobalAdmin, RoleGlobalManager, RoleRegionalManager, RoleAdmin} {
			assert.True(t, set.Contains(admin), "viewer %d must exclude %d", r, admin)
		}
	}
}

func TestExcludedRolesViewerSpecificExtras(t *testing.T) {
	t.Parallel()

	ops := ExcludedRoles(RoleOperationsManager)
	assert.True(t, ops.Contains(RoleTaskAdmin))
	assert.True(t, ops.Contains(RoleDotmapAdmin))

	task := ExcludedRoles(RoleTaskAdmin)
	assert.True(t, task.Contains(RoleDotmapAdmin))
	assert.False(t, task.Contains(RoleTaskAdmin))

	dotmap := ExcludedRoles(RoleDotmapAdmin)
	assert.True(t, dotmap.Contains(RoleTaskAdmin))
	assert.False(t, dotmap.Contains(RoleDotmapAdmin))

	staff := ExcludedRoles(RoleWorkforceStaff)
	assert.False(t, staff.Contains(RoleTaskAdmin))
	assert.False(t, staff.Contains(RoleWorkforceStaff))
}

func TestExcludedRolesDeterministic(t *testing.T) {
	t.Parallel()

	for _, r := range KnownRoles {
		assert.Equal(t, ExcludedRoles(r).Ints(), ExcludedRoles(r).Ints(), "role %d", r)
	}
}

func TestExcludedRolesUnknownFallsBackToMostRestrictive(t *testing.T) {
	t.Parallel()

	unknown := ExcludedRoles(RoleID(999))
	require.NotEmpty(t, unknown)
	assert.Equal(t, fallbackExcluded.Ints(), unknown.Ints())

	// The fallback must be a superset of every table entry.
	for _, r := range KnownRoles {
		for id := range ExcludedRoles(r) {
			assert.True(t, unknown.Contains(id), "fallback missing %d excluded for viewer %d", id, r)
		}
	}
}

func TestExcludedRolesReturnsCopy(t *testing.T) {
	t.Parallel()

	set := ExcludedRoles(RoleWorkforceStaff)
	set[RoleWorkforceStaff] = struct{}{}
	assert.False(t, ExcludedRoles(RoleWorkforceStaff).Contains(RoleWorkforceStaff))
}

func TestTierOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TierPlatform, TierOf(RoleSuperAdmin))
	assert.Equal(t, TierPlatform, TierOf(RolePlatformManager))
	assert.Equal(t, TierGlobal, TierOf(RoleRegionalManager))
	assert.Equal(t, TierLocal, TierOf(RoleAdmin))
	assert.Equal(t, TierLocal, TierOf(RoleDotmapAdmin))
	assert.Equal(t, TierLocal, TierOf(RoleID(999)), "unknown roles must get the most restrictive tier")
}
