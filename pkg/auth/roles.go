package auth

import "github.com/netlens/netlens/pkg/types"

// Capability checks implementing the project role table. Platform admins
// pass every check regardless of membership.

// CanRead reports whether the role may read project state. Every member
// role reads.
func CanRead(role types.Role) bool {
	switch role {
	case types.RoleAdmin, types.RoleManager, types.RoleEngineer, types.RoleViewer:
		return true
	}
	return false
}

// CanUpload reports whether the role may upload files and edit the folder
// tree.
func CanUpload(role types.Role) bool {
	switch role {
	case types.RoleAdmin, types.RoleManager, types.RoleEngineer:
		return true
	}
	return false
}

// CanManage reports whether the role may change project settings, manage
// members and delete devices.
func CanManage(role types.Role) bool {
	return role == types.RoleAdmin || role == types.RoleManager
}

// ValidRole reports whether r is an assignable project role.
func ValidRole(r types.Role) bool {
	switch r {
	case types.RoleAdmin, types.RoleManager, types.RoleEngineer, types.RoleViewer:
		return true
	}
	return false
}
