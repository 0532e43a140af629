// Package policy resolves what a user may do within a project. Authority
// comes from two places: being the project's creator, or holding a
// ProjectMembership row with permission flags. Resolution happens once per
// request; callers consult the resulting Permissions instead of repeating
// the creator-or-flag disjunction at every check.
package policy

import "github.com/taskhive-dev/taskhive/internal/models"

// Permissions is the effective capability set of one user in one project.
type Permissions struct {
	Member        bool // creator or has a membership row
	Creator       bool
	EditProject   bool
	EditTasks     bool
	InviteUsers   bool
	RemoveMembers bool
}

// Resolve computes the permission set from a snapshot of the project and
// the user's membership row (nil when none exists). A nil project resolves
// to the empty set: access checks fail closed.
func Resolve(userID uint, project *models.Project, membership *models.ProjectMembership) Permissions {
	if project == nil || userID == 0 {
		return Permissions{}
	}

	if project.CreatorID == userID {
		return Permissions{
			Member:        true,
			Creator:       true,
			EditProject:   true,
			EditTasks:     true,
			InviteUsers:   true,
			RemoveMembers: true,
		}
	}

	if membership == nil || membership.ProjectID != project.ID || membership.UserID != userID {
		return Permissions{}
	}

	return Permissions{
		Member:      true,
		EditTasks:   membership.CanEditTasks,
		InviteUsers: membership.CanInviteUsers,
	}
}

func (p Permissions) CanView() bool          { return p.Member }
func (p Permissions) CanEditProject() bool   { return p.EditProject }
func (p Permissions) CanInvite() bool        { return p.InviteUsers }
func (p Permissions) CanRemoveMembers() bool { return p.RemoveMembers }

// CanEditTask allows the task's creator to edit regardless of membership
// flags.
func (p Permissions) CanEditTask(userID uint, task *models.Task) bool {
	if task == nil {
		return false
	}
	return task.CreatorID == userID || p.EditTasks
}

// CanDeleteTask is reserved for the task's creator and the project's
// creator.
func (p Permissions) CanDeleteTask(userID uint, task *models.Task) bool {
	if task == nil {
		return false
	}
	return task.CreatorID == userID || p.Creator
}
