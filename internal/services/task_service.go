package services

import (
	"context"
	"errors"

	"taskflow/internal/models"
	"taskflow/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error)
	LogTime(ctx context.Context, id int64, minutes int) (*models.Task, error)
	Archive(ctx context.Context, id int64) error
}

type taskService struct {
	repo repositories.TaskRepository
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Status == "" {
		task.Status = models.StatusToDo
	}
	task.Status = models.CanonicalStatus(string(task.Status))
	if err := models.ValidateTask(task); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	return t, taskErr(err)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error) {
	to = models.CanonicalStatus(string(to))
	if !to.Valid() {
		return nil, &ValidationError{Msg: "invalid status: " + string(to)}
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, taskErr(err)
	}
	return s.GetByID(ctx, id)
}

// LogTime adds minutes to the task's accumulated time.
func (s *taskService) LogTime(ctx context.Context, id int64, minutes int) (*models.Task, error) {
	if minutes <= 0 {
		return nil, &ValidationError{Msg: "minutes must be positive"}
	}
	if err := s.repo.AddTime(ctx, id, minutes); err != nil {
		return nil, taskErr(err)
	}
	return s.GetByID(ctx, id)
}

func (s *taskService) Archive(ctx context.Context, id int64) error {
	return taskErr(s.repo.Archive(ctx, id))
}

func taskErr(err error) error {
	if errors.Is(err, repositories.ErrTaskNotFound) {
		return &NotFoundError{Entity: "Task"}
	}
	return err
}
