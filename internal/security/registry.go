package security

// Role is one of the fixed portal roles assigned at authentication time.
type Role string

const (
	// RoleEmployee is the default staff role.
	RoleEmployee Role = "employee"
	// RoleAdmin manages users and portal configuration.
	RoleAdmin Role = "admin"
	// RolePresident holds every permission unconditionally.
	RolePresident Role = "president"
)

// DataAccess is the coarse data visibility profile attached to a role.
type DataAccess struct {
	CanViewAllUsers         bool
	CanViewAllSchedules     bool
	CanViewAllLeaveRequests bool
	CanModifyOthersData     bool
}

// RolePermissions binds a role to its permission set and data access profile.
type RolePermissions struct {
	Role        Role
	Permissions map[string]struct{}
	DataAccess  DataAccess
}

// Has reports whether the role holds the given permission.
func (rp RolePermissions) Has(perm string) bool {
	_, ok := rp.Permissions[perm]
	return ok
}

// The tables below are hand-enumerated on purpose. Roles are not supersets
// of one another and must never be derived from each other; admin notably
// does not hold admin:audit_logs.
var rolePermissionTable = map[Role]RolePermissions{
	RoleEmployee: {
		Role: RoleEmployee,
		Permissions: permissionSet(
			PermUsersRead,
			PermSchedulesRead,
			PermSchedulesReadAll,
			PermSchedulesWrite,
			PermSchedulesDelete,
			PermSchedulesManageOthers,
			PermLeaveRead,
			PermLeaveWrite,
			PermGroupsRead,
			PermEquipmentRead,
			PermEquipmentWrite,
		),
		DataAccess: DataAccess{
			CanViewAllSchedules: true,
		},
	},
	RoleAdmin: {
		Role: RoleAdmin,
		Permissions: permissionSet(
			PermUsersRead,
			PermUsersWrite,
			PermUsersDelete,
			PermUsersManageRoles,
			PermSchedulesRead,
			PermSchedulesReadAll,
			PermSchedulesWrite,
			PermSchedulesDelete,
			PermSchedulesManageOthers,
			PermLeaveRead,
			PermLeaveReadAll,
			PermLeaveWrite,
			PermLeaveApprove,
			PermGroupsRead,
			PermGroupsWrite,
			PermGroupsDelete,
			PermEquipmentRead,
			PermEquipmentWrite,
			PermEquipmentDelete,
			PermAdminSystemSettings,
		),
		DataAccess: DataAccess{
			CanViewAllUsers:         true,
			CanViewAllSchedules:     true,
			CanViewAllLeaveRequests: true,
			CanModifyOthersData:     true,
		},
	},
	RolePresident: {
		Role:        RolePresident,
		Permissions: permissionSet(AllScopes()...),
		DataAccess: DataAccess{
			CanViewAllUsers:         true,
			CanViewAllSchedules:     true,
			CanViewAllLeaveRequests: true,
			CanModifyOthersData:     true,
		},
	},
}

var roleRank = map[Role]int{
	RoleEmployee:  1,
	RoleAdmin:     2,
	RolePresident: 3,
}

// Resolve returns the permission set and data access profile for a role.
// It is total: an unknown role resolves to an empty permission set.
func Resolve(role Role) RolePermissions {
	if rp, ok := rolePermissionTable[role]; ok {
		return rp
	}
	return RolePermissions{Role: role, Permissions: map[string]struct{}{}}
}

// RoleAtLeast reports whether role meets the minimum role threshold.
func RoleAtLeast(role, min Role) bool {
	return roleRank[role] >= roleRank[min] && roleRank[role] > 0
}

// Roles returns the closed role enumeration in ascending rank order.
func Roles() []Role {
	return []Role{RoleEmployee, RoleAdmin, RolePresident}
}

func permissionSet(perms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}
