package services

import (
	"context"
	"strings"

	"taskflow/internal/models"
	"taskflow/internal/repositories"
)

type ProjectService interface {
	Create(ctx context.Context, name string, ownerID int64) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	AddMember(ctx context.Context, projectID, userID int64) (*models.Project, error)
}

type projectService struct {
	repo  repositories.ProjectRepository
	users UserFinder
}

func NewProjectService(repo repositories.ProjectRepository, users UserFinder) ProjectService {
	return &projectService{repo: repo, users: users}
}

// Create stores a project owned by ownerID. The owner is also recorded as
// a member so the project shows up in their team roster.
func (s *projectService) Create(ctx context.Context, name string, ownerID int64) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "project name is required"}
	}
	p := &models.Project{Name: name, Owner: &models.UserRef{ID: ownerID}}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.AddMember(ctx, p.ID, ownerID); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

func (s *projectService) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.repo.FindProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "Project"}
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context) ([]models.Project, error) {
	return s.repo.List(ctx)
}

func (s *projectService) AddMember(ctx context.Context, projectID, userID int64) (*models.Project, error) {
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	u, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &NotFoundError{Entity: "User"}
	}
	if err := s.repo.AddMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, projectID)
}
