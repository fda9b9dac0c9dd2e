// Package rbac holds the capability predicates used by the HTTP layer.
// There are two roles: players and admins, distinguished by User.IsAdmin.
package rbac

import "go.pilab.hu/mcportal/domain"

// IsAdmin reports whether user holds the admin capability.
func IsAdmin(user *domain.User) bool {
	return user != nil && user.IsAdmin
}

// CanReadUser reports whether caller may read the record identified by
// targetID: their own record, or any record when caller is an admin.
// It does not look at whether targetID exists, so callers must evaluate it
// before the existence lookup to avoid revealing which ids exist.
func CanReadUser(caller *domain.User, targetID string) bool {
	if caller == nil {
		return false
	}
	return caller.ID == targetID || caller.IsAdmin
}

// CanDeleteUser reports whether caller may delete targetID. Admins cannot
// delete themselves.
func CanDeleteUser(caller *domain.User, targetID string) bool {
	return IsAdmin(caller) && caller.ID != targetID
}
