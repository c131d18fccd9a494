// Copyright (c) 2026 Planora. All rights reserved.

package rbac

// # Role Policy

// IsAllowed is the single authorization predicate of the client.
//
// # Contract
//
//   - An absent role (zero value) is never allowed, whatever the requirement.
//   - An empty requirement means "any authenticated role".
//   - Otherwise the role must be a member of the requirement set.
//
// It is a pure, total function with no I/O, safe to call on every render.
func IsAllowed(role Role, required []Role) bool {
	if role == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, allowed := range required {
		if role == allowed {
			return true
		}
	}
	return false
}

// # Capability Helpers
//
// Named shortcuts for the recurring permission checks of the application
// screens. Each is expressed through [IsAllowed] so the truth table above
// stays the only source of authorization semantics.

// CanManageUsers reports whether the role may administer user accounts.
func (r Role) CanManageUsers() bool {
	return IsAllowed(r, []Role{RoleAdmin})
}

// CanManageDepartments reports whether the role may edit departments and rooms.
func (r Role) CanManageDepartments() bool {
	return IsAllowed(r, []Role{RoleAdmin, RoleDeptHead})
}

// CanManagePrograms reports whether the role may edit programs and subjects.
func (r Role) CanManagePrograms() bool {
	return IsAllowed(r, []Role{RoleAdmin, RoleDeptHead, RoleProgHead})
}

// CanManageSchedules reports whether the role may create or move class sessions.
func (r Role) CanManageSchedules() bool {
	return IsAllowed(r, []Role{RoleAdmin, RoleDeptHead, RoleProgHead})
}

// CanViewReports reports whether the role may trigger report exports.
func (r Role) CanViewReports() bool {
	return IsAllowed(r, []Role{RoleAdmin, RoleDeptHead})
}
