// internal/models/task.go
package models

import "time"

// TaskStatus defines the possible statuses for a task or subtask.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusBlocked    TaskStatus = "Blocked"
	StatusCompleted  TaskStatus = "Completed"

	// legacyStatusDone is the pre-"Completed" spelling still found in old rows.
	legacyStatusDone TaskStatus = "Done"
)

// AllStatuses is the canonical status enum in display order.
var AllStatuses = []TaskStatus{StatusToDo, StatusInProgress, StatusBlocked, StatusCompleted}

// CanonicalStatus maps legacy values onto the canonical enum.
// Unknown values are returned unchanged.
func CanonicalStatus(raw string) TaskStatus {
	s := TaskStatus(raw)
	if s == legacyStatusDone {
		return StatusCompleted
	}
	return s
}

func (s TaskStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	MaxAssignees = 5
	MinPriority  = 1
	MaxPriority  = 10
)

// UserRef is a populated user reference embedded into tasks and projects.
type UserRef struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Department string   `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// ProjectRef is a populated project reference.
type ProjectRef struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Owner *UserRef `json:"owner,omitempty"`
}

// Task represents a top-level task. Priority 0 means "not set".
type Task struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      TaskStatus  `json:"status"`
	Priority    int         `json:"priority"`
	Tags        string      `json:"tags"`
	Owner       *UserRef    `json:"owner"`
	Assignee    []*UserRef  `json:"assignee"`
	Project     *ProjectRef `json:"project"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	TimeTaken   int         `json:"time_taken"`
	Archived    bool        `json:"archived"`
}

// Subtask belongs to exactly one parent task and one project. Its reference
// fields keep the ownerId/assigneeId/projectId naming of the subtask API.
type Subtask struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Status       TaskStatus  `json:"status"`
	Priority     int         `json:"priority"`
	Tags         string      `json:"tags"`
	OwnerID      *UserRef    `json:"ownerId"`
	AssigneeID   []*UserRef  `json:"assigneeId"`
	ProjectID    *ProjectRef `json:"projectId"`
	ParentTaskID int64       `json:"parentTaskId"`
	DueDate      *time.Time  `json:"dueDate,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	TimeTaken    int         `json:"timeTaken"`
	Archived     bool        `json:"archived"`
}

// TaskFilter defines the available parameters for listing tasks.
type TaskFilter struct {
	ProjectID  *int64
	OwnerID    *int64
	AssigneeID *int64
	Status     *TaskStatus
	Archived   *bool
}

// TaskQuery selects tasks or subtasks for reports. Nil fields don't filter.
// MemberID matches the owner or any assignee; Department matches when the
// owner or any assignee belongs to it.
type TaskQuery struct {
	ProjectID       *int64
	MemberID        *int64
	Department      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	ExcludeStatuses []TaskStatus
	ExcludeArchived bool
}
