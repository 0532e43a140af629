package services

import (
	"errors"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/policy"
	"gorm.io/gorm"
)

func getProject(db *gorm.DB, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("project %d not found", projectID)
		}
		return nil, err
	}

	return &project, nil
}

func getTask(db *gorm.DB, taskID uint) (*models.Task, error) {
	var task models.Task

	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("task %d not found", taskID)
		}
		return nil, err
	}

	return &task, nil
}

func getUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User

	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %d not found", userID)
		}
		return nil, err
	}

	return &user, nil
}

// permissionsFor loads the acting user's membership row, if any, and
// resolves the capability set once for the request.
func permissionsFor(db *gorm.DB, userID uint, project *models.Project) (policy.Permissions, error) {
	if project == nil || userID == 0 {
		return policy.Permissions{}, nil
	}

	if project.CreatorID == userID {
		return policy.Resolve(userID, project, nil), nil
	}

	var membership models.ProjectMembership

	err := db.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&membership).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policy.Resolve(userID, project, nil), nil
	}

	if err != nil {
		return policy.Permissions{}, err
	}

	return policy.Resolve(userID, project, &membership), nil
}

// isProjectMember reports whether the user holds standing in the project,
// either as creator or through a membership row.
func isProjectMember(db *gorm.DB, project *models.Project, userID uint) (bool, error) {
	if project.CreatorID == userID {
		return true, nil
	}

	var count int64

	err := db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
