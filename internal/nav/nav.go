// Copyright (c) 2026 Planora. All rights reserved.

/*
Package nav composes the sidebar menu for the signed-in user's role.

The full menu is a fixed, ordered list; what varies per user is visibility.
Filtering is pure and order-preserving — the sidebar never reorders itself
between roles, it only shows a subset.
*/
package nav

import (
	"github.com/planora/edt-client/internal/rbac"
	"github.com/planora/edt-client/pkg/slice"
)

// Item is one sidebar entry. Icon is a symbolic name the renderer maps to
// an actual asset.
type Item struct {
	Label        string      `json:"label"`
	Path         string      `json:"path"`
	Icon         string      `json:"icon"`
	AllowedRoles []rbac.Role `json:"-"`
}

var anyRole = []rbac.Role{
	rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead, rbac.RoleTeacher, rbac.RoleStudent,
}

// DefaultItems returns the complete menu in display order.
func DefaultItems() []Item {
	return []Item{
		{Label: "Tableau de bord", Path: "/dashboard", Icon: "home", AllowedRoles: anyRole},
		{Label: "Emploi du temps", Path: "/scheduling/timetable", Icon: "calendar", AllowedRoles: anyRole},
		{Label: "Calendrier", Path: "/scheduling/calendar", Icon: "calendar-days", AllowedRoles: anyRole},
		{Label: "Conflits", Path: "/scheduling/conflicts", Icon: "alert-triangle", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead}},
		{Label: "Rattrapages", Path: "/scheduling/makeups", Icon: "clock", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead, rbac.RoleTeacher}},
		{Label: "Créneaux horaires", Path: "/scheduling/timeslots", Icon: "clock", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead}},
		{Label: "Départements", Path: "/academic/departments", Icon: "building", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead}},
		{Label: "Filières", Path: "/academic/programs", Icon: "graduation-cap", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead}},
		{Label: "Matières", Path: "/academic/subjects", Icon: "book-open", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead}},
		{Label: "Salles", Path: "/academic/rooms", Icon: "map-pin", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead}},
		{Label: "Utilisateurs", Path: "/users", Icon: "users", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead}},
		{Label: "Rapports", Path: "/reports", Icon: "file-text", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead, rbac.RoleProgHead}},
		{Label: "Import", Path: "/import", Icon: "upload", AllowedRoles: []rbac.Role{rbac.RoleAdmin, rbac.RoleDeptHead}},
		{Label: "Paramètres", Path: "/settings", Icon: "settings", AllowedRoles: anyRole},
		{Label: "Profil", Path: "/profile", Icon: "user", AllowedRoles: anyRole},
	}
}

// VisibleItems filters the menu down to entries the role may see. An absent
// role (no profile loaded yet) sees nothing.
func VisibleItems(items []Item, role rbac.Role) []Item {
	if role == "" {
		return nil
	}
	return slice.Filter(items, func(item Item) bool {
		return rbac.IsAllowed(role, item.AllowedRoles)
	})
}
