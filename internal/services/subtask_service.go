package services

import (
	"context"
	"errors"

	"taskflow/internal/models"
	"taskflow/internal/repositories"
)

type SubtaskService interface {
	Create(ctx context.Context, s *models.Subtask) (*models.Subtask, error)
	ListByParent(ctx context.Context, parentID int64) ([]models.Subtask, error)
	LogTime(ctx context.Context, id int64, minutes int) (*models.Subtask, error)
}

type subtaskService struct {
	repo  repositories.SubtaskRepository
	tasks repositories.TaskRepository
}

func NewSubtaskService(repo repositories.SubtaskRepository, tasks repositories.TaskRepository) SubtaskService {
	return &subtaskService{repo: repo, tasks: tasks}
}

// Create stores a subtask. When no project is given it inherits the parent's.
func (s *subtaskService) Create(ctx context.Context, st *models.Subtask) (*models.Subtask, error) {
	if st.ParentTaskID == 0 {
		return nil, &ValidationError{Msg: models.ErrParentRequired.Error()}
	}
	parent, err := s.tasks.FindByID(ctx, st.ParentTaskID)
	if err != nil {
		return nil, taskErr(err)
	}
	if st.ProjectID == nil {
		st.ProjectID = parent.Project
	}
	if st.Status == "" {
		st.Status = models.StatusToDo
	}
	st.Status = models.CanonicalStatus(string(st.Status))
	if err := models.ValidateSubtask(st); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if err := s.repo.Store(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *subtaskService) ListByParent(ctx context.Context, parentID int64) ([]models.Subtask, error) {
	return s.repo.FindByParent(ctx, parentID)
}

func (s *subtaskService) LogTime(ctx context.Context, id int64, minutes int) (*models.Subtask, error) {
	if minutes <= 0 {
		return nil, &ValidationError{Msg: "minutes must be positive"}
	}
	if err := s.repo.AddTime(ctx, id, minutes); err != nil {
		if errors.Is(err, repositories.ErrSubtaskNotFound) {
			return nil, &NotFoundError{Entity: "Subtask"}
		}
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
