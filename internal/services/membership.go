package services

import (
	"errors"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

// Orphan policies decide what happens to a member's assigned tasks when
// that member is removed from a project.
const (
	OrphanPolicyUnassign = "unassign" // null the assignee on their tasks
	OrphanPolicyBlock    = "block"    // refuse removal while tasks remain assigned
)

func ValidOrphanPolicy(policy string) bool {
	return policy == OrphanPolicyUnassign || policy == OrphanPolicyBlock
}

// MembershipService tracks who belongs to which project and with what
// permission flags.
type MembershipService struct {
	db           *gorm.DB
	orphanPolicy string
}

func NewMembershipService(db *gorm.DB, orphanPolicy string) *MembershipService {
	if !ValidOrphanPolicy(orphanPolicy) {
		orphanPolicy = OrphanPolicyUnassign
	}
	return &MembershipService{db: db, orphanPolicy: orphanPolicy}
}

// AddMember invites a user into a project. The acting user needs invite
// rights; the invited user must exist, be active, not be the creator and
// not already hold a membership.
func (s *MembershipService) AddMember(projectID, actingUserID, userID uint, role string, canEditTasks, canInviteUsers bool) (*models.ProjectMembership, error) {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return nil, err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return nil, err
	}

	if !perms.CanInvite() {
		return nil, apperrors.Deniedf("you are not allowed to invite members to this project")
	}

	if !models.ValidRole(role) {
		return nil, apperrors.Validationf("unknown role %q", role)
	}

	user, err := getUser(s.db, userID)

	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.Validationf("user %q is not active", user.Name)
	}

	if project.CreatorID == user.ID {
		return nil, apperrors.Duplicatef("the project creator is already a member")
	}

	var existing int64

	err = s.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, user.ID).
		Count(&existing).Error

	if err != nil {
		return nil, err
	}

	if existing > 0 {
		return nil, apperrors.Duplicatef("user %q is already a member of this project", user.Name)
	}

	membership := models.ProjectMembership{
		ProjectID:      project.ID,
		UserID:         user.ID,
		Role:           role,
		CanEditTasks:   canEditTasks,
		CanInviteUsers: canInviteUsers,
	}

	if err := s.db.Create(&membership).Error; err != nil {
		return nil, err
	}

	membership.User = *user

	return &membership, nil
}

// ensureCreatorMembership writes the creator's manager membership if it is
// missing. Called inside the project-creation transaction; safe to call
// again.
func ensureCreatorMembership(tx *gorm.DB, project *models.Project) error {
	var existing int64

	err := tx.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, project.CreatorID).
		Count(&existing).Error

	if err != nil {
		return err
	}

	if existing > 0 {
		return nil
	}

	return tx.Create(&models.ProjectMembership{
		ProjectID:      project.ID,
		UserID:         project.CreatorID,
		Role:           models.RoleManager,
		CanEditTasks:   true,
		CanInviteUsers: true,
	}).Error
}

// RemoveMember deletes a user's membership. Only the project creator may
// remove members. The removed member's assigned tasks are handled by the
// configured orphan policy inside the same transaction.
func (s *MembershipService) RemoveMember(projectID, actingUserID, userID uint) error {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return err
	}

	if !perms.CanRemoveMembers() {
		return apperrors.Deniedf("only the project creator can remove members")
	}

	if userID == project.CreatorID {
		return apperrors.Validationf("the project creator cannot be removed")
	}

	var membership models.ProjectMembership

	err = s.db.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&membership).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFoundf("user %d is not a member of this project", userID)
	}

	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var assigned int64

		err := tx.Model(&models.Task{}).
			Where("project_id = ? AND assignee_id = ?", project.ID, userID).
			Count(&assigned).Error

		if err != nil {
			return err
		}

		if assigned > 0 && s.orphanPolicy == OrphanPolicyBlock {
			return apperrors.Validationf("user still has %d assigned tasks in this project", assigned)
		}

		if assigned > 0 {
			err := tx.Model(&models.Task{}).
				Where("project_id = ? AND assignee_id = ?", project.ID, userID).
				Update("assignee_id", nil).Error

			if err != nil {
				return err
			}
		}

		// Hard delete so the (user, project) unique index allows re-inviting.
		return tx.Unscoped().Delete(&membership).Error
	})
}

// ListMembers returns the project's memberships, most recent join first.
func (s *MembershipService) ListMembers(projectID, actingUserID uint) ([]models.ProjectMembership, error) {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return nil, err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return nil, err
	}

	if !perms.CanView() {
		return nil, apperrors.Deniedf("you do not have access to this project")
	}

	var memberships []models.ProjectMembership

	err = s.db.Preload("User").
		Where("project_id = ?", project.ID).
		Order("created_at DESC, id DESC").
		Find(&memberships).Error

	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// InviteCandidates returns active users who could still be invited: not
// the creator and not already members.
func (s *MembershipService) InviteCandidates(projectID, actingUserID uint) ([]models.User, error) {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return nil, err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return nil, err
	}

	if !perms.CanInvite() {
		return nil, apperrors.Deniedf("you are not allowed to invite members to this project")
	}

	memberIDs := s.db.Model(&models.ProjectMembership{}).
		Select("user_id").
		Where("project_id = ?", project.ID)

	var candidates []models.User

	err = s.db.Where("is_active = ?", true).
		Where("id <> ?", project.CreatorID).
		Where("id NOT IN (?)", memberIDs).
		Order("name ASC").
		Find(&candidates).Error

	if err != nil {
		return nil, err
	}

	return candidates, nil
}
