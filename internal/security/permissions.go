package security

// User directory permissions.
const (
	PermUsersRead        = "users:read"
	PermUsersWrite       = "users:write"
	PermUsersDelete      = "users:delete"
	PermUsersManageRoles = "users:manage_roles"
)

// UserScopes lists all permissions related to the user directory.
func UserScopes() []string {
	return []string{
		PermUsersRead,
		PermUsersWrite,
		PermUsersDelete,
		PermUsersManageRoles,
	}
}

// Schedule permissions.
const (
	PermSchedulesRead         = "schedules:read"
	PermSchedulesReadAll      = "schedules:read_all"
	PermSchedulesWrite        = "schedules:write"
	PermSchedulesDelete       = "schedules:delete"
	PermSchedulesManageOthers = "schedules:manage_others"
)

// ScheduleScopes lists all permissions related to schedules.
func ScheduleScopes() []string {
	return []string{
		PermSchedulesRead,
		PermSchedulesReadAll,
		PermSchedulesWrite,
		PermSchedulesDelete,
		PermSchedulesManageOthers,
	}
}

// Leave request permissions.
const (
	PermLeaveRead    = "leave:read"
	PermLeaveReadAll = "leave:read_all"
	PermLeaveWrite   = "leave:write"
	PermLeaveApprove = "leave:approve"
)

// LeaveScopes lists all permissions related to leave requests.
func LeaveScopes() []string {
	return []string{
		PermLeaveRead,
		PermLeaveReadAll,
		PermLeaveWrite,
		PermLeaveApprove,
	}
}

// Group permissions.
const (
	PermGroupsRead   = "groups:read"
	PermGroupsWrite  = "groups:write"
	PermGroupsDelete = "groups:delete"
)

// GroupScopes lists all permissions related to scheduling groups.
func GroupScopes() []string {
	return []string{
		PermGroupsRead,
		PermGroupsWrite,
		PermGroupsDelete,
	}
}

// Equipment permissions (rooms, vehicles, sample equipment).
const (
	PermEquipmentRead   = "equipment:read"
	PermEquipmentWrite  = "equipment:write"
	PermEquipmentDelete = "equipment:delete"
)

// EquipmentScopes lists all permissions related to bookable equipment.
func EquipmentScopes() []string {
	return []string{
		PermEquipmentRead,
		PermEquipmentWrite,
		PermEquipmentDelete,
	}
}

// Administrative permissions.
const (
	PermAdminAuditLogs      = "admin:audit_logs"
	PermAdminSystemSettings = "admin:system_settings"
)

// AdminScopes lists administrative permissions.
func AdminScopes() []string {
	return []string{
		PermAdminAuditLogs,
		PermAdminSystemSettings,
	}
}

// AllScopes lists every permission known to the portal.
func AllScopes() []string {
	var all []string
	all = append(all, UserScopes()...)
	all = append(all, ScheduleScopes()...)
	all = append(all, LeaveScopes()...)
	all = append(all, GroupScopes()...)
	all = append(all, EquipmentScopes()...)
	all = append(all, AdminScopes()...)
	return all
}
