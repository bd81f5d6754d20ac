package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTask() *Task {
	return &Task{
		Title:   "Write release notes",
		Status:  StatusToDo,
		Owner:   &UserRef{ID: 1, Username: "owner@example.com"},
		Project: &ProjectRef{ID: 7, Name: "Apollo"},
	}
}

func TestCanonicalStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, CanonicalStatus("Done"))
	assert.Equal(t, StatusCompleted, CanonicalStatus("Completed"))
	assert.Equal(t, StatusBlocked, CanonicalStatus("Blocked"))
	assert.Equal(t, TaskStatus("Archived"), CanonicalStatus("Archived"))
}

func TestValidateTask(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid", func(*Task) {}, false},
		{"missing title", func(t *Task) { t.Title = "  " }, true},
		{"missing project", func(t *Task) { t.Project = nil }, true},
		{"missing owner", func(t *Task) { t.Owner = nil }, true},
		{"legacy status rejected on write", func(t *Task) { t.Status = "Done" }, true},
		{"priority too high", func(t *Task) { t.Priority = 11 }, true},
		{"priority unset is fine", func(t *Task) { t.Priority = 0 }, false},
		{"too many assignees", func(t *Task) { t.Assignee = make([]*UserRef, MaxAssignees+1) }, true},
		{"negative time", func(t *Task) { t.TimeTaken = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(task)
			err := ValidateTask(task)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateSubtask(t *testing.T) {
	s := &Subtask{
		Title:        "Draft",
		Status:       StatusInProgress,
		OwnerID:      &UserRef{ID: 1},
		ProjectID:    &ProjectRef{ID: 7},
		ParentTaskID: 3,
	}
	assert.NoError(t, ValidateSubtask(s))

	s.ParentTaskID = 0
	assert.ErrorIs(t, ValidateSubtask(s), ErrParentRequired)
}
