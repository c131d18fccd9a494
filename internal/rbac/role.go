// Copyright (c) 2026 Planora. All rights reserved.

/*
Package rbac defines the authorization vocabulary of the EDT client.

# Architecture

Roles are a closed enumeration mirrored from the backend's user model. All
role-based decisions in the client — route guarding, navigation filtering,
capability checks scattered across screens — flow through the single
[IsAllowed] predicate, so authorization logic is never duplicated per view.
*/
package rbac

import "fmt"

// Role represents the authorization level granted to an account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"     // Unrestricted application access.
	RoleDeptHead Role = "DEPT_HEAD" // Manages a department and its resources.
	RoleProgHead Role = "PROG_HEAD" // Manages a program's subjects and schedules.
	RoleTeacher  Role = "TEACHER"   // Views own schedule, declares unavailabilities.
	RoleStudent  Role = "STUDENT"   // Views own program's schedule.
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleDeptHead, RoleProgHead, RoleTeacher, RoleStudent}

// ParseRole validates a backend-supplied role string against the closed set.
//
// Unknown strings are rejected rather than defaulted: a client that cannot
// classify its own user must not guess at permissions.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleDeptHead, RoleProgHead, RoleTeacher, RoleStudent:
		return Role(value), nil
	default:
		return "", fmt.Errorf("rbac: unknown role %q", value)
	}
}

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Display returns the French label shown in the UI for the role.
func (r Role) Display() string {
	switch r {
	case RoleAdmin:
		return "Administrateur"
	case RoleDeptHead:
		return "Chef de département"
	case RoleProgHead:
		return "Responsable de filière"
	case RoleTeacher:
		return "Enseignant"
	case RoleStudent:
		return "Étudiant"
	default:
		return string(r)
	}
}
