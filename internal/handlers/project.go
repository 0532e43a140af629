package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type ProjectListEntry struct {
	types.ProjectResponse
	TaskCount int64 `json:"task_count"`
}

func CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, err := directory().Create(userID, req.Name, req.Description, req.Color)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	items, err := directory().ListAccessible(userID, ctx.Query("sort"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]ProjectListEntry, 0, len(items))

	for i := range items {
		response = append(response, ProjectListEntry{
			ProjectResponse: projectResponse(&items[i].Project),
			TaskCount:       items[i].TaskCount,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, perms, err := directory().Get(projectID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": projectResponse(project),
		"permissions": gin.H{
			"can_edit_project":   perms.CanEditProject(),
			"can_invite":         perms.CanInvite(),
			"can_remove_members": perms.CanRemoveMembers(),
			"can_edit_tasks":     perms.EditTasks,
		},
	})
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := directory().Update(projectID, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := directory().Delete(projectID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func GetProjectStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := directory().Stats(projectID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	summary, err := directory().Dashboard(userID, time.Now())

	if err != nil {
		respondError(ctx, err)
		return
	}

	recent := make([]types.TaskResponse, 0, len(summary.RecentTasks))

	for i := range summary.RecentTasks {
		recent = append(recent, taskResponse(&summary.RecentTasks[i]))
	}

	top := make([]ProjectListEntry, 0, len(summary.TopProjects))

	for i := range summary.TopProjects {
		top = append(top, ProjectListEntry{
			ProjectResponse: projectResponse(&summary.TopProjects[i].Project),
			TaskCount:       summary.TopProjects[i].TaskCount,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"total_projects":      summary.TotalProjects,
		"total_tasks":         summary.TotalTasks,
		"total_done":          summary.TotalDone,
		"total_in_progress":   summary.TotalInProgress,
		"total_todo":          summary.TotalTodo,
		"total_active":        summary.TotalActive,
		"my_tasks_count":      summary.MyTasksCount,
		"overdue_count":       summary.OverdueCount,
		"high_priority_count": summary.HighPriorityCount,
		"top_projects":        top,
		"recent_tasks":        recent,
	})
}
