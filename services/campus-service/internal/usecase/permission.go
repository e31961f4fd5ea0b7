package usecase

import "github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"

// Permission names an action a role may perform. The write paths re-check
// these even though the flow guard keeps unverified accounts away from the
// protected surface.
type Permission string

const (
	PermAskQuestion      Permission = "ask_question"
	PermAnswerQuestion   Permission = "answer_question"
	PermEditOwnQuestion  Permission = "edit_own_question"
	PermVerifyUsers      Permission = "verify_users"
	PermAssignRoles      Permission = "assign_roles"
	PermManageContent    Permission = "manage_content"
	PermViewAdminPanel   Permission = "view_admin_panel"
	PermFlagContent      Permission = "flag_content"
	PermEditAnyContent   Permission = "edit_any_content"
	PermDeleteAnyContent Permission = "delete_any_content"
)

var rolePermissions = map[model.Role][]Permission{
	model.RoleStudent: {
		PermAskQuestion,
		PermEditOwnQuestion,
	},
	model.RoleAlumni: {
		PermAskQuestion,
		PermAnswerQuestion,
		PermEditOwnQuestion,
	},
	model.RoleFaculty: {
		PermAskQuestion,
		PermAnswerQuestion,
		PermEditOwnQuestion,
	},
	model.RoleRecruiter: {
		PermAskQuestion,
	},
	model.RoleModerator: {
		PermAskQuestion,
		PermAnswerQuestion,
		PermEditOwnQuestion,
		PermFlagContent,
		PermEditAnyContent,
	},
	model.RoleAdmin: {
		PermAskQuestion,
		PermAnswerQuestion,
		PermEditOwnQuestion,
		PermVerifyUsers,
		PermAssignRoles,
		PermManageContent,
		PermViewAdminPanel,
		PermFlagContent,
		PermEditAnyContent,
		PermDeleteAnyContent,
	},
}

// HasPermission reports whether the role is allowed to perform the action.
func HasPermission(role model.Role, permission Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
