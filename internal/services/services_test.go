package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

	return gdb
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	return user
}

func createTestProject(t *testing.T, db *gorm.DB, creatorID uint, name string) *models.Project {
	t.Helper()

	project, err := NewDirectoryService(db).Create(creatorID, name, "", "")
	require.NoError(t, err)

	return project
}

func addTestMember(t *testing.T, db *gorm.DB, projectID, actingUserID, userID uint, role string, canEdit, canInvite bool) *models.ProjectMembership {
	t.Helper()

	membership, err := NewMembershipService(db, OrphanPolicyUnassign).
		AddMember(projectID, actingUserID, userID, role, canEdit, canInvite)
	require.NoError(t, err)

	return membership
}

func createTestTask(t *testing.T, db *gorm.DB, projectID, creatorID uint, in CreateTaskInput) *models.Task {
	t.Helper()

	task, err := NewTaskService(db).Create(projectID, creatorID, in)
	require.NoError(t, err)

	return task
}
