package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
)

func TestCan_AdminHasEveryAction(t *testing.T) {
	actions := []services.Action{
		services.ActionViewAdmin,
		services.ActionManageProperties,
		services.ActionManageTeam,
		services.ActionManageUsers,
		services.ActionEditSettings,
		services.ActionEditAppearance,
		services.ActionViewContacts,
		services.ActionAssignContacts,
		services.ActionDeleteContacts,
		services.ActionExportContactPDF,
		services.ActionSendContactEmail,
	}
	for _, action := range actions {
		assert.True(t, services.Can(entities.RoleAdmin, action), "admin should have %s", action)
	}
}

func TestCan_ManagerScope(t *testing.T) {
	assert.True(t, services.Can(entities.RoleManager, services.ActionManageProperties))
	assert.True(t, services.Can(entities.RoleManager, services.ActionAssignContacts))
	assert.False(t, services.Can(entities.RoleManager, services.ActionManageUsers))
	assert.False(t, services.Can(entities.RoleManager, services.ActionEditSettings))
}

func TestCan_StaffScope(t *testing.T) {
	assert.True(t, services.Can(entities.RoleStaff, services.ActionViewAdmin))
	assert.True(t, services.Can(entities.RoleStaff, services.ActionViewContacts))
	assert.False(t, services.Can(entities.RoleStaff, services.ActionManageProperties))
	assert.False(t, services.Can(entities.RoleStaff, services.ActionDeleteContacts))
}

func TestCan_UnknownRole(t *testing.T) {
	assert.False(t, services.Can(entities.Role("ghost"), services.ActionViewAdmin))
}
