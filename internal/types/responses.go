package types

import "time"

// Key under which the authenticated user is stored in the request context.
const ContextUserKey = "user"

type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatorID   uint      `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID         uint      `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CanEditTasks   bool      `json:"can_edit_tasks"`
	CanInviteUsers bool      `json:"can_invite_users"`
	JoinedAt       time.Time `json:"joined_at"`
}

type TaskResponse struct {
	ID            uint          `json:"id"`
	ProjectID     uint          `json:"project_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	AssigneeID    *uint         `json:"assignee_id"`
	Assignee      *UserResponse `json:"assignee,omitempty"`
	CreatorID     uint          `json:"creator_id"`
	Status        string        `json:"status"`
	StatusLabel   string        `json:"status_label"`
	Priority      string        `json:"priority"`
	PriorityLabel string        `json:"priority_label"`
	DueDate       *string       `json:"due_date"`
	DueBucket     string        `json:"due_bucket"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
