package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/policy"
	"gorm.io/gorm"
)

// DirectoryService owns project metadata and is the single aggregation
// point for task/member statistics. Dashboard, project detail and listing
// views all read the same definitions of "active", "overdue" and "high
// priority" from here.
type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// ProjectListItem is a project plus its live task count, used by sorted
// listings.
type ProjectListItem struct {
	models.Project
	TaskCount int64 `json:"task_count"`
}

type ProjectStats struct {
	TaskCount               int64      `json:"task_count"`
	DoneCount               int64      `json:"done_count"`
	InProgressCount         int64      `json:"in_progress_count"`
	ReviewCount             int64      `json:"review_count"`
	TodoCount               int64      `json:"todo_count"`
	TeamCount               int64      `json:"team_count"`
	HighPriorityActiveCount int64      `json:"high_priority_active_count"`
	LastUpdated             *time.Time `json:"last_updated"`
}

type DashboardSummary struct {
	TotalProjects     int64             `json:"total_projects"`
	TotalTasks        int64             `json:"total_tasks"`
	TotalDone         int64             `json:"total_done"`
	TotalInProgress   int64             `json:"total_in_progress"`
	TotalTodo         int64             `json:"total_todo"`
	TotalActive       int64             `json:"total_active"`
	MyTasksCount      int64             `json:"my_tasks_count"`
	OverdueCount      int64             `json:"overdue_count"`
	HighPriorityCount int64             `json:"high_priority_count"`
	TopProjects       []ProjectListItem `json:"top_projects"`
	RecentTasks       []models.Task     `json:"recent_tasks"`
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Color       *string
}

var (
	hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	projectSortColumns = map[string]string{
		"name":        "projects.name ASC",
		"-name":       "projects.name DESC",
		"created_at":  "projects.created_at ASC",
		"-created_at": "projects.created_at DESC",
		"task_count":  "task_count ASC",
		"-task_count": "task_count DESC",
	}
)

// Create validates the project fields and atomically persists the project
// together with the creator's manager membership.
func (s *DirectoryService) Create(creatorID uint, name, description, color string) (*models.Project, error) {
	creator, err := getUser(s.db, creatorID)

	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)

	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, apperrors.Validationf("project name must be between 2 and 100 characters")
	}

	if utf8.RuneCountInString(description) > 500 {
		return nil, apperrors.Validationf("project description must be at most 500 characters")
	}

	if color == "" {
		color = models.DefaultProjectColor
	}

	if !hexColorPattern.MatchString(color) {
		return nil, apperrors.Validationf("color must be a hex value like #336699")
	}

	project := models.Project{
		Name:        name,
		Description: description,
		Color:       color,
		CreatorID:   creator.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return ensureCreatorMembership(tx, &project)
	})

	if err != nil {
		return nil, err
	}

	return &project, nil
}

// Get returns the project together with the acting user's resolved
// permissions.
func (s *DirectoryService) Get(projectID, actingUserID uint) (*models.Project, policy.Permissions, error) {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return nil, policy.Permissions{}, err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return nil, policy.Permissions{}, err
	}

	if !perms.CanView() {
		return nil, policy.Permissions{}, apperrors.Deniedf("you do not have access to this project")
	}

	return project, perms, nil
}

// Update edits project metadata. Only the creator may do this; membership
// flags never extend to project metadata.
func (s *DirectoryService) Update(projectID, actingUserID uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return nil, err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return nil, err
	}

	if !perms.CanEditProject() {
		return nil, apperrors.Deniedf("only the project creator can edit the project")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)

		if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
			return nil, apperrors.Validationf("project name must be between 2 and 100 characters")
		}

		project.Name = name
	}

	if in.Description != nil {
		if utf8.RuneCountInString(*in.Description) > 500 {
			return nil, apperrors.Validationf("project description must be at most 500 characters")
		}
		project.Description = *in.Description
	}

	if in.Color != nil {
		if !hexColorPattern.MatchString(*in.Color) {
			return nil, apperrors.Validationf("color must be a hex value like #336699")
		}
		project.Color = *in.Color
	}

	if err := s.db.Save(project).Error; err != nil {
		return nil, err
	}

	return project, nil
}

// Delete removes the project with its tasks and memberships in one
// transaction. Creator only.
func (s *DirectoryService) Delete(projectID, actingUserID uint) error {
	project, err := getProject(s.db, projectID)

	if err != nil {
		return err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return err
	}

	if !perms.CanEditProject() {
		return apperrors.Deniedf("only the project creator can delete the project")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(project).Error
	})
}

// ListAccessible returns the union of projects the user created and
// projects the user joined, with task counts, ordered by the requested
// sort key. Unknown keys fall back to name order; ties break by id.
func (s *DirectoryService) ListAccessible(userID uint, sort string) ([]ProjectListItem, error) {
	order, ok := projectSortColumns[sort]

	if !ok {
		order = projectSortColumns["name"]
	}

	memberProjects := s.db.Model(&models.ProjectMembership{}).
		Select("project_id").
		Where("user_id = ?", userID)

	var items []ProjectListItem

	err := s.db.Model(&models.Project{}).
		Select("projects.*, COUNT(tasks.id) AS task_count").
		Joins("LEFT JOIN tasks ON tasks.project_id = projects.id AND tasks.deleted_at IS NULL").
		Where("projects.creator_id = ? OR projects.id IN (?)", userID, memberProjects).
		Group("projects.id").
		Order(order + ", projects.id ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

// Stats aggregates one project's task and team numbers. Every view that
// needs these figures goes through here.
func (s *DirectoryService) Stats(projectID, actingUserID uint) (*ProjectStats, error) {
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

	stats := &ProjectStats{}

	counts, err := s.statusCounts(s.db.Model(&models.Task{}).Where("project_id = ?", project.ID))

	if err != nil {
		return nil, err
	}

	stats.TodoCount = counts[models.StatusTodo]
	stats.InProgressCount = counts[models.StatusInProgress]
	stats.ReviewCount = counts[models.StatusReview]
	stats.DoneCount = counts[models.StatusDone]
	stats.TaskCount = counts[models.StatusTodo] + counts[models.StatusInProgress] +
		counts[models.StatusReview] + counts[models.StatusDone]

	err = s.db.Model(&models.Task{}).
		Where("project_id = ? AND priority = ? AND status IN ?", project.ID, models.PriorityHigh,
			[]string{models.StatusTodo, models.StatusInProgress}).
		Count(&stats.HighPriorityActiveCount).Error

	if err != nil {
		return nil, err
	}

	var memberCount int64

	err = s.db.Model(&models.ProjectMembership{}).
		Where("project_id = ?", project.ID).
		Count(&memberCount).Error

	if err != nil {
		return nil, err
	}

	var creatorRows int64

	err = s.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, project.CreatorID).
		Count(&creatorRows).Error

	if err != nil {
		return nil, err
	}

	stats.TeamCount = memberCount

	// The creator counts toward the team even without a membership row.
	if creatorRows == 0 {
		stats.TeamCount++
	}

	var latest []models.Task

	err = s.db.Where("project_id = ?", project.ID).
		Order("updated_at DESC").
		Limit(1).
		Find(&latest).Error

	if err != nil {
		return nil, err
	}

	if len(latest) > 0 {
		stats.LastUpdated = &latest[0].UpdatedAt
	}

	return stats, nil
}

// Dashboard aggregates across every project the user can see: totals by
// status, the user's own assignment count, overdue and high-priority
// figures, the busiest projects and the latest tasks.
func (s *DirectoryService) Dashboard(userID uint, now time.Time) (*DashboardSummary, error) {
	projects, err := s.ListAccessible(userID, "-task_count")

	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalProjects: int64(len(projects)),
		TopProjects:   projects,
		RecentTasks:   []models.Task{},
	}

	if len(summary.TopProjects) > 3 {
		summary.TopProjects = summary.TopProjects[:3]
	}

	if len(projects) == 0 {
		return summary, nil
	}

	projectIDs := make([]uint, 0, len(projects))

	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	counts, err := s.statusCounts(s.db.Model(&models.Task{}).Where("project_id IN ?", projectIDs))

	if err != nil {
		return nil, err
	}

	summary.TotalTodo = counts[models.StatusTodo]
	summary.TotalInProgress = counts[models.StatusInProgress]
	summary.TotalDone = counts[models.StatusDone]
	summary.TotalTasks = counts[models.StatusTodo] + counts[models.StatusInProgress] +
		counts[models.StatusReview] + counts[models.StatusDone]
	summary.TotalActive = summary.TotalTodo + summary.TotalInProgress

	err = s.db.Model(&models.Task{}).
		Where("assignee_id = ?", userID).
		Count(&summary.MyTasksCount).Error

	if err != nil {
		return nil, err
	}

	activeStatuses := []string{models.StatusTodo, models.StatusInProgress}

	err = s.db.Model(&models.Task{}).
		Where("project_id IN ? AND due_date < ? AND status IN ?", projectIDs, truncateToDay(now), activeStatuses).
		Count(&summary.OverdueCount).Error

	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Task{}).
		Where("project_id IN ? AND priority = ? AND status IN ?", projectIDs, models.PriorityHigh, activeStatuses).
		Count(&summary.HighPriorityCount).Error

	if err != nil {
		return nil, err
	}

	err = s.db.Preload("Project").Preload("Assignee").
		Where("project_id IN ?", projectIDs).
		Order("created_at DESC, id DESC").
		Limit(5).
		Find(&summary.RecentTasks).Error

	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *DirectoryService) statusCounts(query *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	if err := query.Select("status, COUNT(*) AS count").Group("status").Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))

	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
