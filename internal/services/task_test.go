package services

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/datatypes"
)

func dueOn(t *testing.T, value string) *datatypes.Date {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)

	date := datatypes.Date(parsed)
	return &date
}

func TestCreateTask(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	project := createTestProject(t, db, alice.ID, "Website Redesign")
	addTestMember(t, db, project.ID, alice.ID, bob.ID, models.RoleDeveloper, false, false)

	svc := NewTaskService(db)

	t.Run("defaults", func(t *testing.T) {
		task, err := svc.Create(project.ID, alice.ID, CreateTaskInput{Title: "  Draft hero copy  "})
		require.NoError(t, err)
		assert.Equal(t, "Draft hero copy", task.Title)
		assert.Equal(t, models.StatusTodo, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.Nil(t, task.AssigneeID)
	})

	t.Run("assign to member", func(t *testing.T) {
		task, err := svc.Create(project.ID, alice.ID, CreateTaskInput{
			Title:      "Build nav",
			AssigneeID: &bob.ID,
			Priority:   models.PriorityHigh,
		})
		require.NoError(t, err)
		require.NotNil(t, task.AssigneeID)
		assert.Equal(t, bob.ID, *task.AssigneeID)
	})

	t.Run("assign to project creator", func(t *testing.T) {
		_, err := svc.Create(project.ID, bob.ID, CreateTaskInput{
			Title:      "Review mockups",
			AssigneeID: &alice.ID,
		})
		require.NoError(t, err)
	})

	t.Run("assign to non-member", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&models.Task{}).Count(&before).Error)

		_, err := svc.Create(project.ID, alice.ID, CreateTaskInput{
			Title:      "Should not exist",
			AssigneeID: &carol.ID,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		var after int64
		require.NoError(t, db.Model(&models.Task{}).Count(&after).Error)
		assert.Equal(t, before, after, "failed create must not persist anything")
	})

	t.Run("title limits", func(t *testing.T) {
		_, err := svc.Create(project.ID, alice.ID, CreateTaskInput{Title: "   "})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.Create(project.ID, alice.ID, CreateTaskInput{Title: strings.Repeat("a", 201)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("title limit counts characters, not bytes", func(t *testing.T) {
		task, err := svc.Create(project.ID, alice.ID, CreateTaskInput{Title: strings.Repeat("д", 200)})
		require.NoError(t, err)
		assert.Equal(t, 200, utf8.RuneCountInString(task.Title))

		_, err = svc.Create(project.ID, alice.ID, CreateTaskInput{Title: strings.Repeat("д", 201)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown status and priority", func(t *testing.T) {
		_, err := svc.Create(project.ID, alice.ID, CreateTaskInput{Title: "X", Status: "archived"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.Create(project.ID, alice.ID, CreateTaskInput{Title: "X", Priority: "urgent"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("outsider cannot create", func(t *testing.T) {
		_, err := svc.Create(project.ID, carol.ID, CreateTaskInput{Title: "Sneaky"})
		assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	})
}

func TestUpdateTask(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	project := createTestProject(t, db, alice.ID, "Website Redesign")
	addTestMember(t, db, project.ID, alice.ID, bob.ID, models.RoleDeveloper, false, false)

	svc := NewTaskService(db)

	aliceTask := createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Alice's task"})
	bobTask := createTestTask(t, db, project.ID, bob.ID, CreateTaskInput{Title: "Bob's task"})

	t.Run("member without edit flag cannot edit others' tasks", func(t *testing.T) {
		newTitle := "Hijacked"
		_, err := svc.Update(aliceTask.ID, bob.ID, UpdateTaskInput{Title: &newTitle})
		assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	})

	t.Run("task creator edits own task", func(t *testing.T) {
		status := models.StatusInProgress
		updated, err := svc.Update(bobTask.ID, bob.ID, UpdateTaskInput{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, updated.Status)
	})

	t.Run("assignee change is re-validated", func(t *testing.T) {
		_, err := svc.Update(aliceTask.ID, alice.ID, UpdateTaskInput{AssigneeID: &carol.ID})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		var reloaded models.Task
		require.NoError(t, db.First(&reloaded, aliceTask.ID).Error)
		assert.Nil(t, reloaded.AssigneeID, "failed update must leave the task unchanged")

		updated, err := svc.Update(aliceTask.ID, alice.ID, UpdateTaskInput{AssigneeID: &bob.ID})
		require.NoError(t, err)
		require.NotNil(t, updated.AssigneeID)
		assert.Equal(t, bob.ID, *updated.AssigneeID)
	})

	t.Run("clear assignee", func(t *testing.T) {
		updated, err := svc.Update(aliceTask.ID, alice.ID, UpdateTaskInput{ClearAssignee: true})
		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)
	})

	t.Run("outsider gets denied", func(t *testing.T) {
		title := "Nope"
		_, err := svc.Update(aliceTask.ID, carol.ID, UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	})

	t.Run("missing task", func(t *testing.T) {
		title := "Ghost"
		_, err := svc.Update(9999, alice.ID, UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDeleteTask(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	project := createTestProject(t, db, alice.ID, "Website Redesign")
	addTestMember(t, db, project.ID, alice.ID, bob.ID, models.RoleDeveloper, true, false)

	svc := NewTaskService(db)

	aliceTask := createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Alice's task"})
	bobTask := createTestTask(t, db, project.ID, bob.ID, CreateTaskInput{Title: "Bob's task"})

	t.Run("edit flag does not grant delete", func(t *testing.T) {
		_, err := svc.Delete(aliceTask.ID, bob.ID)
		assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	})

	t.Run("task creator deletes own", func(t *testing.T) {
		projectID, err := svc.Delete(bobTask.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, projectID)

		var count int64
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", bobTask.ID).Count(&count).Error)
		assert.Zero(t, count, "delete is a hard delete")
	})

	t.Run("project creator deletes any", func(t *testing.T) {
		task := createTestTask(t, db, project.ID, bob.ID, CreateTaskInput{Title: "Another"})
		_, err := svc.Delete(task.ID, alice.ID)
		require.NoError(t, err)
	})
}

func TestSetStatus(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	project := createTestProject(t, db, alice.ID, "Website Redesign")
	addTestMember(t, db, project.ID, alice.ID, bob.ID, models.RoleViewer, false, false)

	svc := NewTaskService(db)
	task := createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Board card"})

	t.Run("any known status is reachable from any other", func(t *testing.T) {
		for _, status := range []string{models.StatusDone, models.StatusTodo, models.StatusReview, models.StatusInProgress} {
			updated, err := svc.SetStatus(task.ID, bob.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
		}
	})

	t.Run("bogus status leaves the task unchanged", func(t *testing.T) {
		_, err := svc.SetStatus(task.ID, bob.ID, "bogus")
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		var reloaded models.Task
		require.NoError(t, db.First(&reloaded, task.ID).Error)
		assert.Equal(t, models.StatusInProgress, reloaded.Status)
	})

	t.Run("outsider denied", func(t *testing.T) {
		mallory := createTestUser(t, db, "mallory")
		_, err := svc.SetStatus(task.ID, mallory.ID, models.StatusDone)
		assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	})
}

func TestMutationRefreshesUpdatedAt(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	project := createTestProject(t, db, alice.ID, "Website Redesign")

	svc := NewTaskService(db)
	task := createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Stamped"})

	t.Run("update", func(t *testing.T) {
		var before models.Task
		require.NoError(t, db.First(&before, task.ID).Error)

		time.Sleep(10 * time.Millisecond)

		title := "Restamped"
		_, err := svc.Update(task.ID, alice.ID, UpdateTaskInput{Title: &title})
		require.NoError(t, err)

		var after models.Task
		require.NoError(t, db.First(&after, task.ID).Error)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "edits must refresh the stamp")
	})

	t.Run("status change", func(t *testing.T) {
		var before models.Task
		require.NoError(t, db.First(&before, task.ID).Error)

		time.Sleep(10 * time.Millisecond)

		_, err := svc.SetStatus(task.ID, alice.ID, models.StatusInProgress)
		require.NoError(t, err)

		var after models.Task
		require.NoError(t, db.First(&after, task.ID).Error)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "status moves must refresh the stamp")
	})
}

func TestListTasks(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	project := createTestProject(t, db, alice.ID, "Website Redesign")
	addTestMember(t, db, project.ID, alice.ID, bob.ID, models.RoleDeveloper, false, false)

	svc := NewTaskService(db)

	createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Charlie", Status: models.StatusDone})
	createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Alpha", AssigneeID: &bob.ID})
	createTestTask(t, db, project.ID, alice.ID, CreateTaskInput{Title: "Bravo", Status: models.StatusInProgress})

	t.Run("default order is newest first", func(t *testing.T) {
		tasks, err := svc.List(project.ID, alice.ID, TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "Bravo", tasks[0].Title)
	})

	t.Run("sort by title", func(t *testing.T) {
		tasks, err := svc.List(project.ID, alice.ID, TaskFilter{Sort: "title"})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "Alpha", tasks[0].Title)
		assert.Equal(t, "Charlie", tasks[2].Title)
	})

	t.Run("filter by status", func(t *testing.T) {
		tasks, err := svc.List(project.ID, alice.ID, TaskFilter{Status: models.StatusDone})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Charlie", tasks[0].Title)
	})

	t.Run("filter by assignee", func(t *testing.T) {
		tasks, err := svc.List(project.ID, alice.ID, TaskFilter{AssigneeID: &bob.ID})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Alpha", tasks[0].Title)
	})

	t.Run("unknown sort falls back to default", func(t *testing.T) {
		tasks, err := svc.List(project.ID, alice.ID, TaskFilter{Sort: "evil; DROP TABLE tasks"})
		require.NoError(t, err)
		assert.Len(t, tasks, 3)
	})
}

func TestDueBuckets(t *testing.T) {
	today := time.Date(2025, time.March, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		due    *datatypes.Date
		status string
		bucket string
	}{
		{"no due date", nil, models.StatusTodo, BucketNone},
		{"yesterday", dueOn(t, "2025-03-11"), models.StatusTodo, BucketOverdue},
		{"today", dueOn(t, "2025-03-12"), models.StatusTodo, BucketToday},
		{"in three days", dueOn(t, "2025-03-15"), models.StatusTodo, BucketThisWeek},
		{"in exactly a week", dueOn(t, "2025-03-19"), models.StatusTodo, BucketThisWeek},
		{"next month", dueOn(t, "2025-04-20"), models.StatusTodo, BucketFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{Title: "T", Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.bucket, DueBucket(task, today))
		})
	}
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	yesterday := dueOn(t, "2025-03-11")

	t.Run("active past-due task is overdue", func(t *testing.T) {
		task := &models.Task{Status: models.StatusTodo, DueDate: yesterday}
		assert.True(t, IsOverdue(task, today))
	})

	t.Run("done task is never overdue", func(t *testing.T) {
		task := &models.Task{Status: models.StatusDone, DueDate: yesterday}
		assert.False(t, IsOverdue(task, today))
	})

	t.Run("review does not count", func(t *testing.T) {
		task := &models.Task{Status: models.StatusReview, DueDate: yesterday}
		assert.False(t, IsOverdue(task, today))
	})

	t.Run("no due date", func(t *testing.T) {
		task := &models.Task{Status: models.StatusTodo}
		assert.False(t, IsOverdue(task, today))
	})
}
