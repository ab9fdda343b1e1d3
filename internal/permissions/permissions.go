package permissions

import "github.com/fets-ops/console-api/internal/models"

// Action identifies a guarded operation. Handlers and services check
// capabilities through Can instead of comparing role strings inline.
type Action string

const (
	ActionManageUsers      Action = "users.manage"
	ActionManageStaff      Action = "staff.manage"
	ActionViewStaff        Action = "staff.view"
	ActionManageSessions   Action = "sessions.manage"
	ActionViewSessions     Action = "sessions.view"
	ActionManageCandidates Action = "candidates.manage"
	ActionImportCandidates Action = "candidates.import"
	ActionEditRoster       Action = "roster.edit"
	ActionViewRoster       Action = "roster.view"
	ActionExportRoster     Action = "roster.export"
	ActionDecideRequests   Action = "requests.decide"
	ActionSubmitRequests   Action = "requests.submit"
	ActionManageChecklists Action = "checklists.manage"
	ActionUseChecklists    Action = "checklists.use"
	ActionManageIncidents  Action = "incidents.manage"
	ActionReportIncidents  Action = "incidents.report"
	ActionPostToWall       Action = "wall.post"
	ActionModerateWall     Action = "wall.moderate"
	ActionViewDashboard    Action = "dashboard.view"
)

var grants = map[models.UserRole]map[Action]struct{}{
	models.RoleStaff: actionSet(
		ActionViewStaff,
		ActionViewSessions,
		ActionManageCandidates,
		ActionViewRoster,
		ActionSubmitRequests,
		ActionUseChecklists,
		ActionReportIncidents,
		ActionPostToWall,
		ActionViewDashboard,
	),
	models.RoleAdmin: actionSet(
		ActionManageStaff,
		ActionViewStaff,
		ActionManageSessions,
		ActionViewSessions,
		ActionManageCandidates,
		ActionImportCandidates,
		ActionEditRoster,
		ActionViewRoster,
		ActionExportRoster,
		ActionDecideRequests,
		ActionSubmitRequests,
		ActionManageChecklists,
		ActionUseChecklists,
		ActionManageIncidents,
		ActionReportIncidents,
		ActionPostToWall,
		ActionModerateWall,
		ActionViewDashboard,
	),
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Can reports whether the given role may perform the action. Super admins
// may perform everything.
func Can(role models.UserRole, action Action) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	set, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// RolesAllowed returns every role permitted to perform the action. Useful
// for route registration.
func RolesAllowed(action Action) []models.UserRole {
	roles := []models.UserRole{models.RoleSuperAdmin}
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleStaff} {
		if set, ok := grants[role]; ok {
			if _, ok := set[action]; ok {
				roles = append(roles, role)
			}
		}
	}
	return roles
}
