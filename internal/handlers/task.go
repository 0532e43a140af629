package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AssigneeID  *uint  `json:"assignee_id"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}

type UpdateTaskRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	AssigneeID    *uint   `json:"assignee_id"`
	ClearAssignee bool    `json:"clear_assignee"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	DueDate       *string `json:"due_date"`
	ClearDueDate  bool    `json:"clear_due_date"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateTask(ctx *gin.Context) {
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

	var req CreateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dueDate, err := parseDueDate(req.DueDate)

	if err != nil {
		respondError(ctx, err)
		return
	}

	task, err := tasks().Create(projectID, userID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastBoardRefresh(task.ProjectID)

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

func ListTasks(ctx *gin.Context) {
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

	filter := services.TaskFilter{
		Status: ctx.Query("status"),
		Sort:   ctx.Query("sort"),
	}

	if raw := ctx.Query("assignee"); raw != "" {
		assigneeID, err := strconv.ParseUint(raw, 10, 32)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee filter"})
			return
		}

		id := uint(assigneeID)
		filter.AssigneeID = &id
	}

	items, err := tasks().List(projectID, userID, filter)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TaskResponse, 0, len(items))

	for i := range items {
		response = append(response, taskResponse(&items[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		Status:        req.Status,
		Priority:      req.Priority,
		ClearDueDate:  req.ClearDueDate,
	}

	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)

		if err != nil {
			respondError(ctx, err)
			return
		}

		input.DueDate = dueDate
	}

	task, err := tasks().Update(taskID, userID, input)

	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastBoardRefresh(task.ProjectID)

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID, err := tasks().Delete(taskID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadcastBoardRefresh(projectID)

	ctx.Status(http.StatusNoContent)
}

// SetTaskStatus backs the drag-and-drop board: status only, returns the
// display label so the client can update in place without a reload.
// Every failure carries "success": false so board scripts have a single
// field to check.
func SetTaskStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var req SetStatusRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
		return
	}

	task, err := tasks().SetStatus(taskID, userID, req.Status)

	if err != nil {
		status, message := errorStatus(err)
		ctx.JSON(status, gin.H{"success": false, "error": message})
		return
	}

	BroadcastBoardRefresh(task.ProjectID)

	ctx.JSON(http.StatusOK, gin.H{
		"success":      true,
		"id":           task.ID,
		"status":       task.Status,
		"status_label": models.StatusLabel(task.Status),
	})
}
