package models

import (
	"errors"
	"fmt"
	"strings"
)

// Input validation for records written by the CRUD layer. Reports never call
// these; they apply their own defaults to whatever the stores return.

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrProjectRequired = errors.New("project is required")
	ErrParentRequired  = errors.New("parent task is required")
	ErrOwnerRequired   = errors.New("owner is required")
)

func ValidateTask(t *Task) error {
	if t == nil {
		return errors.New("task is nil")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if t.Project == nil || t.Project.ID == 0 {
		return ErrProjectRequired
	}
	if t.Owner == nil || t.Owner.ID == 0 {
		return ErrOwnerRequired
	}
	return validateCommon(t.Status, t.Priority, len(t.Assignee), t.TimeTaken)
}

func ValidateSubtask(s *Subtask) error {
	if s == nil {
		return errors.New("subtask is nil")
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrTitleRequired
	}
	if s.ProjectID == nil || s.ProjectID.ID == 0 {
		return ErrProjectRequired
	}
	if s.ParentTaskID == 0 {
		return ErrParentRequired
	}
	if s.OwnerID == nil || s.OwnerID.ID == 0 {
		return ErrOwnerRequired
	}
	return validateCommon(s.Status, s.Priority, len(s.AssigneeID), s.TimeTaken)
}

func validateCommon(status TaskStatus, priority, assignees, timeTaken int) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	if priority != 0 && (priority < MinPriority || priority > MaxPriority) {
		return fmt.Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	}
	if assignees > MaxAssignees {
		return fmt.Errorf("at most %d assignees allowed", MaxAssignees)
	}
	if timeTaken < 0 {
		return errors.New("time taken cannot be negative")
	}
	return nil
}
