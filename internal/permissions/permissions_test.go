package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fets-ops/console-api/internal/models"
)

func TestSuperAdminCanEverything(t *testing.T) {
	for _, action := range []Action{
		ActionManageUsers,
		ActionEditRoster,
		ActionDecideRequests,
		ActionImportCandidates,
	} {
		assert.True(t, Can(models.RoleSuperAdmin, action), string(action))
	}
}

func TestAdminGrants(t *testing.T) {
	assert.True(t, Can(models.RoleAdmin, ActionEditRoster))
	assert.True(t, Can(models.RoleAdmin, ActionDecideRequests))
	assert.False(t, Can(models.RoleAdmin, ActionManageUsers))
}

func TestWallModerationGrants(t *testing.T) {
	assert.True(t, Can(models.RoleSuperAdmin, ActionModerateWall))
	assert.True(t, Can(models.RoleAdmin, ActionModerateWall))
	assert.False(t, Can(models.RoleStaff, ActionModerateWall))
}

func TestStaffGrants(t *testing.T) {
	assert.True(t, Can(models.RoleStaff, ActionSubmitRequests))
	assert.True(t, Can(models.RoleStaff, ActionManageCandidates))
	assert.False(t, Can(models.RoleStaff, ActionEditRoster))
	assert.False(t, Can(models.RoleStaff, ActionDecideRequests))
	assert.False(t, Can(models.RoleStaff, ActionImportCandidates))
}

func TestUnknownRoleDenied(t *testing.T) {
	assert.False(t, Can(models.UserRole("GUEST"), ActionViewRoster))
}

func TestRolesAllowed(t *testing.T) {
	roles := RolesAllowed(ActionDecideRequests)
	assert.ElementsMatch(t, []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}, roles)

	roles = RolesAllowed(ActionSubmitRequests)
	assert.Contains(t, roles, models.RoleStaff)
}
