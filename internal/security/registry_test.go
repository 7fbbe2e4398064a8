package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEveryRoleHasPermissions(t *testing.T) {
	for _, role := range Roles() {
		rp := Resolve(role)
		require.NotEmpty(t, rp.Permissions, "role %s must have a non-empty permission set", role)
		assert.Equal(t, role, rp.Role)
	}
}

func TestResolveUnknownRoleIsTotal(t *testing.T) {
	rp := Resolve(Role("contractor"))
	assert.Empty(t, rp.Permissions)
	assert.False(t, rp.Has(PermUsersRead))
	assert.Equal(t, DataAccess{}, rp.DataAccess)
}

func TestPresidentHoldsEveryPermission(t *testing.T) {
	rp := Resolve(RolePresident)
	for _, perm := range AllScopes() {
		assert.True(t, rp.Has(perm), "president must hold %s", perm)
	}
}

func TestAdminIsNotSupersetPermissioned(t *testing.T) {
	// Elevated roles are not implicitly superset-permissioned: admin
	// does not hold the audit log permission.
	rp := Resolve(RoleAdmin)
	assert.False(t, rp.Has(PermAdminAuditLogs))
	assert.True(t, rp.Has(PermAdminSystemSettings))
}

func TestEmployeeManagesAllSchedules(t *testing.T) {
	rp := Resolve(RoleEmployee)
	assert.True(t, rp.Has(PermSchedulesWrite))
	assert.True(t, rp.Has(PermSchedulesManageOthers))
	assert.True(t, rp.Has(PermSchedulesDelete))
	assert.False(t, rp.Has(PermUsersWrite))
	assert.False(t, rp.Has(PermLeaveApprove))
}

func TestDataAccessProfiles(t *testing.T) {
	assert.Equal(t, DataAccess{CanViewAllSchedules: true}, Resolve(RoleEmployee).DataAccess)
	assert.Equal(t, DataAccess{
		CanViewAllUsers:         true,
		CanViewAllSchedules:     true,
		CanViewAllLeaveRequests: true,
		CanModifyOthersData:     true,
	}, Resolve(RoleAdmin).DataAccess)
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(RolePresident, RoleEmployee))
	assert.True(t, RoleAtLeast(RoleAdmin, RoleAdmin))
	assert.False(t, RoleAtLeast(RoleEmployee, RoleAdmin))
	assert.False(t, RoleAtLeast(Role("contractor"), RoleEmployee))
}
