// Copyright (c) 2026 Planora. All rights reserved.

package guard

import (
	"sort"
	"strings"

	"github.com/planora/edt-client/internal/rbac"
)

// Rule binds a route prefix to the roles allowed to enter it. An empty
// Required slice means any authenticated user.
type Rule struct {
	Prefix   string
	Required []rbac.Role
}

// Table is an ordered set of route rules. Lookup is longest-prefix-first, so
// "/academic/departments" wins over "/academic" for a detail page under it.
type Table []Rule

// Match returns the role requirement for path, or nil when no rule applies.
// Unmatched paths are open to any authenticated user; unauthenticated access
// is always refused one layer up, in [Evaluate].
func (t Table) Match(path string) []rbac.Role {
	for _, rule := range t {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule.Required
		}
	}
	return nil
}

// managementStaff is the recurring ADMIN + department head pair.
var managementStaff = []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead}

// academicStaff additionally includes program heads.
var academicStaff = []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead}

// DefaultTable is the application's route permission map.
//
// Routes absent from the table (dashboard, timetable, profile, settings)
// are open to every authenticated role.
func DefaultTable() Table {
	table := Table{
		{Prefix: "/users", Required: []rbac.Role{rbac.RoleAdmin}},
		{Prefix: "/teachers", Required: managementStaff},
		{Prefix: "/students", Required: academicStaff},
		{Prefix: "/academic/departments", Required: managementStaff},
		{Prefix: "/academic/programs", Required: academicStaff},
		{Prefix: "/academic/subjects", Required: academicStaff},
		{Prefix: "/academic/classrooms", Required: managementStaff},
		{Prefix: "/academic/rooms", Required: managementStaff},
		{Prefix: "/reports", Required: managementStaff},
		{Prefix: "/import", Required: managementStaff},
	}

	// Longest prefix first, so nested rules shadow their parents.
	sort.SliceStable(table, func(i, j int) bool {
		return len(table[i].Prefix) > len(table[j].Prefix)
	})
	return table
}
