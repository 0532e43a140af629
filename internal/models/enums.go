package models

// Task statuses. Any status may be written over any other; there is no
// enforced linear progression.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Membership roles.
const (
	RoleManager   = "manager"
	RoleDeveloper = "developer"
	RoleDesigner  = "designer"
	RoleTester    = "tester"
	RoleViewer    = "viewer"
)

var statusLabels = map[string]string{
	StatusTodo:       "To Do",
	StatusInProgress: "In Progress",
	StatusReview:     "In Review",
	StatusDone:       "Done",
}

var priorityLabels = map[string]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
}

var validRoles = map[string]bool{
	RoleManager:   true,
	RoleDeveloper: true,
	RoleDesigner:  true,
	RoleTester:    true,
	RoleViewer:    true,
}

func ValidStatus(status string) bool {
	_, ok := statusLabels[status]
	return ok
}

func ValidPriority(priority string) bool {
	_, ok := priorityLabels[priority]
	return ok
}

func ValidRole(role string) bool {
	return validRoles[role]
}

// StatusLabel returns the display label for a status, or the raw value if
// the status is unknown.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func PriorityLabel(priority string) string {
	if label, ok := priorityLabels[priority]; ok {
		return label
	}
	return priority
}
