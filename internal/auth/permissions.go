package auth

import "slices"

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermDeviceRead         Permission = "device:read"
	PermDeviceOperate      Permission = "device:operate"
	PermActivityRead       Permission = "activity:read"
	PermNotificationManage Permission = "notification:manage"
	PermAccessManage       Permission = "access:manage"
	PermUserManage         Permission = "user:manage"
)

// rolePermissions maps each role to its granted permissions.
// This is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleGuest: {
		PermDeviceRead,    // device-scoped
		PermDeviceOperate, // device-scoped
		PermNotificationManage,
	},
	RoleAdmin: {
		PermDeviceRead,
		PermDeviceOperate,
		PermActivityRead,
		PermNotificationManage,
		PermAccessManage,
		PermUserManage,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	return slices.Contains(rolePermissions[role], perm)
}

// PermissionsForRole returns all permissions granted to a role.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	return slices.Clone(perms)
}

// IsDeviceScoped returns true if the role's device permissions are limited
// to the user's accessible devices.
func IsDeviceScoped(role Role) bool {
	return role == RoleGuest
}
