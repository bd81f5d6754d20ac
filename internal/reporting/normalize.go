// Package reporting turns populated tasks and subtasks into status-grouped
// report data: normalisation, bucketing, aggregates and row formatting.
// Nothing here performs I/O; callers fetch the records and render the result.
package reporting

import (
	"time"

	"taskflow/internal/models"
)

// RecordKind tells which entity a normalised record came from.
type RecordKind string

const (
	KindTask    RecordKind = "task"
	KindSubtask RecordKind = "subtask"
)

// Record is the single shape tasks and subtasks are processed in.
// Assignee is never nil.
type Record struct {
	ID          int64
	Kind        RecordKind
	Title       string
	DueDate     *time.Time
	Priority    int
	Tags        string
	Description string
	Owner       *models.UserRef
	Assignee    []*models.UserRef
	Project     *models.ProjectRef
	CreatedAt   time.Time
	Status      models.TaskStatus
	TimeTaken   int
	Archived    bool
}

// FromTask normalises a task. Only the assignee list needs coercion.
func FromTask(t models.Task) Record {
	return Record{
		ID:          t.ID,
		Kind:        KindTask,
		Title:       t.Title,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Tags:        t.Tags,
		Description: t.Description,
		Owner:       t.Owner,
		Assignee:    assigneeList(t.Assignee),
		Project:     t.Project,
		CreatedAt:   t.CreatedAt,
		Status:      t.Status,
		TimeTaken:   t.TimeTaken,
		Archived:    t.Archived,
	}
}

// FromSubtask maps ownerId/assigneeId/projectId onto owner/assignee/project.
// fallback is used when the subtask carries no resolved project, so callers
// that already hold the project don't need to fetch it per record.
func FromSubtask(s models.Subtask, fallback *models.ProjectRef) Record {
	project := s.ProjectID
	if project == nil {
		project = fallback
	}
	return Record{
		ID:          s.ID,
		Kind:        KindSubtask,
		Title:       s.Title,
		DueDate:     s.DueDate,
		Priority:    s.Priority,
		Tags:        s.Tags,
		Description: s.Description,
		Owner:       s.OwnerID,
		Assignee:    assigneeList(s.AssigneeID),
		Project:     project,
		CreatedAt:   s.CreatedAt,
		Status:      s.Status,
		TimeTaken:   s.TimeTaken,
		Archived:    s.Archived,
	}
}

// SingleAssignee wraps a singular assignee reference into the list form.
func SingleAssignee(u *models.UserRef) []*models.UserRef {
	if u == nil {
		return []*models.UserRef{}
	}
	return []*models.UserRef{u}
}

// Merge normalises tasks followed by subtasks, keeping fetch order.
func Merge(tasks []models.Task, subtasks []models.Subtask, fallback *models.ProjectRef) []Record {
	out := make([]Record, 0, len(tasks)+len(subtasks))
	for _, t := range tasks {
		out = append(out, FromTask(t))
	}
	for _, s := range subtasks {
		out = append(out, FromSubtask(s, fallback))
	}
	return out
}

func assigneeList(in []*models.UserRef) []*models.UserRef {
	if in == nil {
		return []*models.UserRef{}
	}
	return in
}
