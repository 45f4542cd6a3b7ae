// Package roles defines the numeric role identifiers used across the
// platform, the visibility tiers that drive company scoping, and the
// role-exclusion policy applied to staff-count aggregations.
package roles

import "sort"

// RoleID is the numeric role identifier carried in JWT claims and
// user_company_roles rows.
type RoleID int

// Known roles. Platform roles operate across all companies; global roles see
// their company plus direct sub-companies; local and staff roles are bound to
// a single company.
const (
	RoleSuperAdmin        RoleID = 0
	RolePlatformManager   RoleID = 1
	RoleGlobalAdmin       RoleID = 2
	RoleGlobalManager     RoleID = 3
	RoleRegionalManager   RoleID = 4
	RoleAdmin             RoleID = 10
	RoleOperationsManager RoleID = 11
	RoleTaskAdmin         RoleID = 12
	RoleDotmapAdmin       RoleID = 13
	RoleWorkforceStaff    RoleID = 20
	RoleFieldStaff        RoleID = 21
)

// KnownRoles lists every role id the platform recognizes.
var KnownRoles = []RoleID{
	RoleSuperAdmin, RolePlatformManager,
	RoleGlobalAdmin, RoleGlobalManager, RoleRegionalManager,
	RoleAdmin, RoleOperationsManager, RoleTaskAdmin, RoleDotmapAdmin,
	RoleWorkforceStaff, RoleFieldStaff,
}

// Tier groups roles by company visibility.
type Tier int

const (
	// TierPlatform roles reach any company.
	TierPlatform Tier = iota
	// TierGlobal roles reach their own company plus its direct sub-companies.
	TierGlobal
	// TierLocal roles reach exactly their own company.
	TierLocal
)

// TierOf returns the visibility tier for a role. Unknown role ids get the
// most restrictive tier.
func TierOf(r RoleID) Tier {
	switch r {
	case RoleSuperAdmin, RolePlatformManager:
		return TierPlatform
	case RoleGlobalAdmin, RoleGlobalManager, RoleRegionalManager:
		return TierGlobal
	default:
		return TierLocal
	}
}

// RoleSet is an immutable-by-convention set of role ids.
type RoleSet map[RoleID]struct{}

// NewRoleSet builds a set from the given ids.
func NewRoleSet(ids ...RoleID) RoleSet {
	s := make(RoleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s RoleSet) Contains(id RoleID) bool {
	_, ok := s[id]
	return ok
}

// Ints returns the sorted role ids as plain ints, for SQL int[] parameters.
func (s RoleSet) Ints() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, int(id))
	}
	sort.Ints(out)
	return out
}

func (s RoleSet) union(extra ...RoleID) RoleSet {
	out := make(RoleSet, len(s)+len(extra))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range extra {
		out[id] = struct{}{}
	}
	return out
}

func (s RoleSet) clone() RoleSet {
	return s.union()
}
