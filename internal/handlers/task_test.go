package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTest(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
	)
	require.NoError(t, err)

	db.DB = gdb
}

func authedContext(t *testing.T, w *httptest.ResponseRecorder, user *models.User, method, path string, body any) *gin.Context {
	t.Helper()

	ctx, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	ctx.Request = httptest.NewRequest(method, path, &buf)
	ctx.Request.Header.Set("Content-Type", "application/json")

	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})

	return ctx
}

func seedUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	require.NoError(t, db.DB.Create(user).Error)

	return user
}

func TestSetTaskStatusHandler(t *testing.T) {
	setupHandlerTest(t)

	alice := seedUser(t, "alice")
	project, err := services.NewDirectoryService(db.DB).Create(alice.ID, "Website Redesign", "", "")
	require.NoError(t, err)

	task, err := services.NewTaskService(db.DB).Create(project.ID, alice.ID, services.CreateTaskInput{
		Title: "Board card",
	})
	require.NoError(t, err)

	t.Run("returns label and raw status", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := authedContext(t, w, alice, "PATCH", "/api/tasks/1/status", gin.H{"status": "in_progress"})
		ctx.Params = gin.Params{{Key: "task_id", Value: fmt.Sprint(task.ID)}}

		SetTaskStatus(ctx)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success     bool   `json:"success"`
			ID          uint   `json:"id"`
			Status      string `json:"status"`
			StatusLabel string `json:"status_label"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.True(t, resp.Success)
		assert.Equal(t, task.ID, resp.ID)
		assert.Equal(t, models.StatusInProgress, resp.Status)
		assert.Equal(t, "In Progress", resp.StatusLabel)
	})

	t.Run("bogus status is a 400 and no mutation", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := authedContext(t, w, alice, "PATCH", "/api/tasks/1/status", gin.H{"status": "bogus"})
		ctx.Params = gin.Params{{Key: "task_id", Value: fmt.Sprint(task.ID)}}

		SetTaskStatus(ctx)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.NotEmpty(t, resp["error"])

		var reloaded models.Task
		require.NoError(t, db.DB.First(&reloaded, task.ID).Error)
		assert.Equal(t, models.StatusInProgress, reloaded.Status)
	})

	t.Run("outsider is a 403", func(t *testing.T) {
		mallory := seedUser(t, "mallory")

		w := httptest.NewRecorder()
		ctx := authedContext(t, w, mallory, "PATCH", "/api/tasks/1/status", gin.H{"status": "done"})
		ctx.Params = gin.Params{{Key: "task_id", Value: fmt.Sprint(task.ID)}}

		SetTaskStatus(ctx)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
	})

	t.Run("missing task is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := authedContext(t, w, alice, "PATCH", "/api/tasks/9999/status", gin.H{"status": "done"})
		ctx.Params = gin.Params{{Key: "task_id", Value: "9999"}}

		SetTaskStatus(ctx)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
	})
}

func TestCreateTaskHandler(t *testing.T) {
	setupHandlerTest(t)

	alice := seedUser(t, "alice")
	project, err := services.NewDirectoryService(db.DB).Create(alice.ID, "Website Redesign", "", "")
	require.NoError(t, err)

	t.Run("creates with due date", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := authedContext(t, w, alice, "POST", "/api/projects/1/tasks", gin.H{
			"title":    "Launch checklist",
			"priority": "high",
			"due_date": "2025-06-01",
		})
		ctx.Params = gin.Params{{Key: "project_id", Value: fmt.Sprint(project.ID)}}

		CreateTask(ctx)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp types.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, "Launch checklist", resp.Title)
		assert.Equal(t, "high", resp.Priority)
		require.NotNil(t, resp.DueDate)
		assert.Equal(t, "2025-06-01", *resp.DueDate)
	})

	t.Run("malformed due date is a 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := authedContext(t, w, alice, "POST", "/api/projects/1/tasks", gin.H{
			"title":    "Bad date",
			"due_date": "tomorrow",
		})
		ctx.Params = gin.Params{{Key: "project_id", Value: fmt.Sprint(project.ID)}}

		CreateTask(ctx)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
