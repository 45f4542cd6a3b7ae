package roles

// Platform operators and pure administrative roles never count toward
// operational headcounts, regardless of who is looking.
var baseExcluded = NewRoleSet(
	RoleSuperAdmin, RolePlatformManager,
	RoleGlobalAdmin, RoleGlobalManager, RoleRegionalManager,
	RoleAdmin,
)

// exclusionTable has one entry per known role id. Viewer-specific extras on
// top of baseExcluded: operations viewers do not count task/dotmap
// administrators as staff, and task/dotmap viewers do not count each other.
var exclusionTable = map[RoleID]RoleSet{
	RoleSuperAdmin:        baseExcluded,
	RolePlatformManager:   baseExcluded,
	RoleGlobalAdmin:       baseExcluded,
	RoleGlobalManager:     baseExcluded,
	RoleRegionalManager:   baseExcluded,
	RoleAdmin:             baseExcluded,
	RoleOperationsManager: baseExcluded.union(RoleTaskAdmin, RoleDotmapAdmin),
	RoleTaskAdmin:         baseExcluded.union(RoleDotmapAdmin),
	RoleDotmapAdmin:       baseExcluded.union(RoleTaskAdmin),
	RoleWorkforceStaff:    baseExcluded,
	RoleFieldStaff:        baseExcluded,
}

// fallbackExcluded is used for any role id absent from the table. It equals
// the most restrictive (largest) exclusion set so unknown viewers fail
// closed rather than seeing inflated headcounts.
var fallbackExcluded = baseExcluded.union(RoleTaskAdmin, RoleDotmapAdmin)

// ExcludedRoles returns the set of role ids that must not count as staff
// when the given role is viewing headcounts. Total: never panics, unknown
// ids get the fallback set. The returned set is a copy and safe to mutate.
func ExcludedRoles(viewer RoleID) RoleSet {
	if s, ok := exclusionTable[viewer]; ok {
		return s.clone()
	}
	return fallbackExcluded.clone()
}
