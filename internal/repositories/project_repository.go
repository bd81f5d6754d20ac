package repositories

import (
	"context"
	"database/sql"
	"errors"

	"taskflow/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	AddMember(ctx context.Context, projectID, userID int64) error
	// FindProjectByID returns (nil, nil) when the project doesn't exist.
	FindProjectByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
}

type projectRepository struct {
	db   *sql.DB
	refs refResolver
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db, refs: refResolver{db: db}}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	var ownerID *int64
	if p.Owner != nil {
		ownerID = &p.Owner.ID
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, owner_id) VALUES ($1, $2) RETURNING id, created_at`,
		p.Name, ownerID,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *projectRepository) AddMember(ctx context.Context, projectID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		projectID, userID)
	return err
}

func (r *projectRepository) FindProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	var ownerID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &ownerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	memberIDs, err := r.memberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	var ids idSet
	ids.add(ownerID.Int64)
	ids.add(memberIDs...)
	users, err := r.refs.users(ctx, ids.ids)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		p.Owner = users[ownerID.Int64]
	}
	p.Members = resolveUsers(memberIDs, users)
	return p, nil
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectRepository) memberIDs(ctx context.Context, projectID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM project_members WHERE project_id = $1 ORDER BY user_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
