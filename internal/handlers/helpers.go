package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/datatypes"
)

// Set by the router before serving.
var (
	RemovalPolicy  = services.OrphanPolicyUnassign
	AllowedOrigins []string
)

func directory() *services.DirectoryService {
	return services.NewDirectoryService(db.DB)
}

func memberships() *services.MembershipService {
	return services.NewMembershipService(db.DB, RemovalPolicy)
}

func tasks() *services.TaskService {
	return services.NewTaskService(db.DB)
}

// errorStatus maps the service error taxonomy onto an HTTP status and a
// client-safe message. Anything outside the taxonomy is logged and
// reported as a 500.
func errorStatus(err error) (int, string) {
	var appErr *apperrors.Error

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperrors.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperrors.ErrAccessDenied):
			status = http.StatusForbidden
		case errors.Is(err, apperrors.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperrors.ErrDuplicateMembership):
			status = http.StatusConflict
		}

		return status, appErr.Message()
	}

	log.Printf("Internal error: %v", err)

	return http.StatusInternalServerError, "Internal server error"
}

func respondError(ctx *gin.Context, err error) {
	status, message := errorStatus(err)
	ctx.JSON(status, gin.H{"error": message})
}

func parseDueDate(raw string) (*datatypes.Date, error) {
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", raw)

	if err != nil {
		return nil, apperrors.Validationf("due_date must be formatted YYYY-MM-DD")
	}

	date := datatypes.Date(parsed)

	return &date, nil
}

func userResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		IsActive: user.IsActive,
	}
}

func projectResponse(project *models.Project) types.ProjectResponse {
	return types.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
		CreatorID:   project.CreatorID,
		CreatedAt:   project.CreatedAt,
	}
}

func taskResponse(task *models.Task) types.TaskResponse {
	resp := types.TaskResponse{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		Title:         task.Title,
		Description:   task.Description,
		AssigneeID:    task.AssigneeID,
		CreatorID:     task.CreatorID,
		Status:        task.Status,
		StatusLabel:   models.StatusLabel(task.Status),
		Priority:      task.Priority,
		PriorityLabel: models.PriorityLabel(task.Priority),
		DueBucket:     services.DueBucket(task, time.Now()),
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	if task.DueDate != nil {
		formatted := time.Time(*task.DueDate).Format("2006-01-02")
		resp.DueDate = &formatted
	}

	if task.Assignee != nil {
		assignee := userResponse(task.Assignee)
		resp.Assignee = &assignee
	}

	return resp
}
