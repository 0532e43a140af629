package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Due-date buckets used by filtering UIs. Buckets classify by date only;
// the overdue *count* additionally requires an active status, see
// IsOverdue.
const (
	BucketOverdue  = "overdue"
	BucketToday    = "today"
	BucketThisWeek = "this_week"
	BucketFuture   = "future"
	BucketNone     = "none"
)

// TaskService enforces the task lifecycle rules: assignees must hold
// standing in the task's project, statuses and priorities must be known
// values, and edit/delete rights follow the policy package.
type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  *uint
	Status      string
	Priority    string
	DueDate     *datatypes.Date
}

type UpdateTaskInput struct {
	Title         *string
	Description   *string
	AssigneeID    *uint
	ClearAssignee bool
	Status        *string
	Priority      *string
	DueDate       *datatypes.Date
	ClearDueDate  bool
}

// TaskFilter narrows and orders a project's task list. Zero values leave
// the corresponding dimension unfiltered.
type TaskFilter struct {
	Status     string
	AssigneeID *uint
	Sort       string
}

var taskSortColumns = map[string]string{
	"title":       "title ASC",
	"-title":      "title DESC",
	"status":      "status ASC",
	"-status":     "status DESC",
	"priority":    "priority ASC",
	"-priority":   "priority DESC",
	"due_date":    "due_date ASC",
	"-due_date":   "due_date DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

// Create validates and persists a new task in the project. The acting
// user only needs view access; edit rights gate changing existing tasks,
// not adding new ones.
func (s *TaskService) Create(projectID, actingUserID uint, in CreateTaskInput) (*models.Task, error) {
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

	title := strings.TrimSpace(in.Title)

	if n := utf8.RuneCountInString(title); n < 1 || n > 200 {
		return nil, apperrors.Validationf("title must be between 1 and 200 characters")
	}

	status := in.Status

	if status == "" {
		status = models.StatusTodo
	}

	if !models.ValidStatus(status) {
		return nil, apperrors.Validationf("unknown status %q", status)
	}

	priority := in.Priority

	if priority == "" {
		priority = models.PriorityMedium
	}

	if !models.ValidPriority(priority) {
		return nil, apperrors.Validationf("unknown priority %q", priority)
	}

	if in.AssigneeID != nil {
		if err := s.validateAssignee(project, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		CreatorID:   actingUserID,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// Update applies a partial change to a task. Requires edit rights; the
// assignee invariant is re-validated whenever the assignee changes.
func (s *TaskService) Update(taskID, actingUserID uint, in UpdateTaskInput) (*models.Task, error) {
	task, err := getTask(s.db, taskID)

	if err != nil {
		return nil, err
	}

	project, err := getProject(s.db, task.ProjectID)

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

	if !perms.CanEditTask(actingUserID, task) {
		return nil, apperrors.Deniedf("you are not allowed to edit this task")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)

		if n := utf8.RuneCountInString(title); n < 1 || n > 200 {
			return nil, apperrors.Validationf("title must be between 1 and 200 characters")
		}

		task.Title = title
	}

	if in.Description != nil {
		task.Description = *in.Description
	}

	if in.Status != nil {
		if !models.ValidStatus(*in.Status) {
			return nil, apperrors.Validationf("unknown status %q", *in.Status)
		}
		task.Status = *in.Status
	}

	if in.Priority != nil {
		if !models.ValidPriority(*in.Priority) {
			return nil, apperrors.Validationf("unknown priority %q", *in.Priority)
		}
		task.Priority = *in.Priority
	}

	if in.ClearAssignee {
		task.AssigneeID = nil
	} else if in.AssigneeID != nil {
		if err := s.validateAssignee(project, *in.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = in.AssigneeID
	}

	if in.ClearDueDate {
		task.DueDate = nil
	} else if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

// Delete removes a task permanently. Reserved for the task's creator and
// the project's creator. Returns the project id so callers can notify
// board clients.
func (s *TaskService) Delete(taskID, actingUserID uint) (uint, error) {
	task, err := getTask(s.db, taskID)

	if err != nil {
		return 0, err
	}

	project, err := getProject(s.db, task.ProjectID)

	if err != nil {
		return 0, err
	}

	perms, err := permissionsFor(s.db, actingUserID, project)

	if err != nil {
		return 0, err
	}

	if !perms.CanView() {
		return 0, apperrors.Deniedf("you do not have access to this project")
	}

	if !perms.CanDeleteTask(actingUserID, task) {
		return 0, apperrors.Deniedf("only the task creator or the project creator can delete this task")
	}

	if err := s.db.Unscoped().Delete(task).Error; err != nil {
		return 0, err
	}

	return project.ID, nil
}

// SetStatus is the lightweight status-only update used by live boards.
// Unknown statuses fail without mutating the task; any known status may
// replace any other.
func (s *TaskService) SetStatus(taskID, actingUserID uint, status string) (*models.Task, error) {
	task, err := getTask(s.db, taskID)

	if err != nil {
		return nil, err
	}

	project, err := getProject(s.db, task.ProjectID)

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

	if !models.ValidStatus(status) {
		return nil, apperrors.Validationf("unknown status %q", status)
	}

	if err := s.db.Model(task).Update("status", status).Error; err != nil {
		return nil, err
	}

	return task, nil
}

// List returns the project's tasks after applying the filter. Ties on the
// sort key break by insertion order.
func (s *TaskService) List(projectID, actingUserID uint, filter TaskFilter) ([]models.Task, error) {
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

	query := s.db.Preload("Assignee").Preload("Creator").Where("project_id = ?", project.ID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	order, ok := taskSortColumns[filter.Sort]

	if !ok {
		order = "created_at DESC"
	}

	var tasks []models.Task

	if err := query.Order(order + ", id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *TaskService) validateAssignee(project *models.Project, assigneeID uint) error {
	user, err := getUser(s.db, assigneeID)

	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validationf("assignee %d does not exist", assigneeID)
		}
		return err
	}

	member, err := isProjectMember(s.db, project, user.ID)

	if err != nil {
		return err
	}

	if !member {
		return apperrors.Validationf("assignee %q must be a member of the project", user.Name)
	}

	return nil
}

// IsOverdue reports whether a task counts as overdue: a due date in the
// past while the task is still to do or in progress.
func IsOverdue(task *models.Task, today time.Time) bool {
	if task.DueDate == nil {
		return false
	}

	if task.Status != models.StatusTodo && task.Status != models.StatusInProgress {
		return false
	}

	due := time.Time(*task.DueDate)

	return due.Before(truncateToDay(today))
}

// DueBucket classifies a task's due date relative to today.
func DueBucket(task *models.Task, today time.Time) string {
	if task.DueDate == nil {
		return BucketNone
	}

	day := truncateToDay(today)
	due := truncateToDay(time.Time(*task.DueDate))

	switch {
	case due.Before(day):
		return BucketOverdue
	case due.Equal(day):
		return BucketToday
	case !due.After(day.AddDate(0, 0, 7)):
		return BucketThisWeek
	default:
		return BucketFuture
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
