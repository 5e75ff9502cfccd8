package services

import "github.com/habitat-inmuebles/habitat-web/internal/domain/entities"

// Action is one capability checked against a user's role. Checks run
// through a single table instead of role comparisons scattered across
// handlers and templates.
type Action string

const (
	ActionViewAdmin        Action = "view_admin"
	ActionManageProperties Action = "manage_properties"
	ActionManageTeam       Action = "manage_team"
	ActionManageUsers      Action = "manage_users"
	ActionEditSettings     Action = "edit_settings"
	ActionEditAppearance   Action = "edit_appearance"
	ActionViewContacts     Action = "view_contacts"
	ActionAssignContacts   Action = "assign_contacts"
	ActionDeleteContacts   Action = "delete_contacts"
	ActionExportContactPDF Action = "export_contact_pdf"
	ActionSendContactEmail Action = "send_contact_email"
)

var rolePermissions = map[entities.Role]map[Action]bool{
	entities.RoleAdmin: {
		ActionViewAdmin:        true,
		ActionManageProperties: true,
		ActionManageTeam:       true,
		ActionManageUsers:      true,
		ActionEditSettings:     true,
		ActionEditAppearance:   true,
		ActionViewContacts:     true,
		ActionAssignContacts:   true,
		ActionDeleteContacts:   true,
		ActionExportContactPDF: true,
		ActionSendContactEmail: true,
	},
	entities.RoleManager: {
		ActionViewAdmin:        true,
		ActionManageProperties: true,
		ActionViewContacts:     true,
		ActionAssignContacts:   true,
		ActionDeleteContacts:   true,
		ActionExportContactPDF: true,
		ActionSendContactEmail: true,
	},
	entities.RoleStaff: {
		ActionViewAdmin:        true,
		ActionViewContacts:     true,
		ActionSendContactEmail: true,
	},
}

// Can reports whether role may perform action. Unknown roles can do
// nothing.
func Can(role entities.Role, action Action) bool {
	return rolePermissions[role][action]
}
