package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"taskflow/internal/models"
)

var ErrSubtaskNotFound = errors.New("subtask not found")

type SubtaskRepository interface {
	Store(ctx context.Context, s *models.Subtask) error
	FindByID(ctx context.Context, id int64) (*models.Subtask, error)
	FindByParent(ctx context.Context, parentID int64) ([]models.Subtask, error)
	AddTime(ctx context.Context, id int64, minutes int) error
	FindSubtasks(ctx context.Context, q models.TaskQuery) ([]models.Subtask, error)
}

type subtaskRepository struct {
	db   *sql.DB
	refs refResolver
}

func NewSubtaskRepository(db *sql.DB) SubtaskRepository {
	return &subtaskRepository{db: db, refs: refResolver{db: db}}
}

const subtaskColumns = `id, title, description, status, priority, tags, owner_id, assignee_ids,
       project_id, parent_task_id, due_date, created_at, time_taken, archived`

type subtaskRow struct {
	subtask   models.Subtask
	ownerID   sql.NullInt64
	assignees pq.Int64Array
	projectID int64
}

func scanSubtask(s interface{ Scan(...any) error }) (*subtaskRow, error) {
	var (
		row      subtaskRow
		status   string
		priority sql.NullInt64
		tags     sql.NullString
	)
	st := &row.subtask
	err := s.Scan(
		&st.ID, &st.Title, &st.Description, &status, &priority, &tags, &row.ownerID, &row.assignees,
		&row.projectID, &st.ParentTaskID, &st.DueDate, &st.CreatedAt, &st.TimeTaken, &st.Archived,
	)
	if err != nil {
		return nil, err
	}
	st.Status = models.CanonicalStatus(status)
	st.Priority = int(priority.Int64)
	st.Tags = tags.String
	return &row, nil
}

func (r *subtaskRepository) Store(ctx context.Context, s *models.Subtask) error {
	query := `
		INSERT INTO subtasks (
			title, description, status, priority, tags, owner_id, assignee_ids,
			project_id, parent_task_id, due_date, time_taken, archived
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at`

	var ownerID *int64
	if s.OwnerID != nil {
		ownerID = &s.OwnerID.ID
	}
	var projectID int64
	if s.ProjectID != nil {
		projectID = s.ProjectID.ID
	}
	return r.db.QueryRowContext(ctx, query,
		s.Title, s.Description, s.Status, nullPriority(s.Priority), s.Tags, ownerID,
		pq.Array(refIDs(s.AssigneeID)), projectID, s.ParentTaskID, s.DueDate, s.TimeTaken, s.Archived,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *subtaskRepository) FindByID(ctx context.Context, id int64) (*models.Subtask, error) {
	row, err := scanSubtask(r.db.QueryRowContext(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}
	out, err := r.populate(ctx, []*subtaskRow{row})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *subtaskRepository) FindByParent(ctx context.Context, parentID int64) ([]models.Subtask, error) {
	return r.query(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE parent_task_id = $1 ORDER BY created_at ASC, id ASC`, parentID)
}

func (r *subtaskRepository) FindSubtasks(ctx context.Context, q models.TaskQuery) ([]models.Subtask, error) {
	where, args := queryFilter(q)
	return r.query(ctx, `SELECT `+subtaskColumns+` FROM subtasks`+where+` ORDER BY created_at ASC, id ASC`, args...)
}

func (r *subtaskRepository) AddTime(ctx context.Context, id int64, minutes int) error {
	return execOne(ctx, r.db, ErrSubtaskNotFound,
		`UPDATE subtasks SET time_taken = time_taken + $1 WHERE id=$2`, minutes, id)
}

func (r *subtaskRepository) query(ctx context.Context, query string, args ...any) ([]models.Subtask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []*subtaskRow
	for rows.Next() {
		row, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.populate(ctx, raw)
}

func (r *subtaskRepository) populate(ctx context.Context, raw []*subtaskRow) ([]models.Subtask, error) {
	out := make([]models.Subtask, 0, len(raw))
	if len(raw) == 0 {
		return out, nil
	}

	var userIDs, projectIDs idSet
	for _, row := range raw {
		userIDs.add(row.ownerID.Int64)
		userIDs.add(row.assignees...)
		projectIDs.add(row.projectID)
	}
	users, err := r.refs.users(ctx, userIDs.ids)
	if err != nil {
		return nil, err
	}
	projects, err := r.refs.projects(ctx, projectIDs.ids)
	if err != nil {
		return nil, err
	}

	for _, row := range raw {
		s := row.subtask
		if row.ownerID.Valid {
			s.OwnerID = users[row.ownerID.Int64]
		}
		s.AssigneeID = resolveUsers(row.assignees, users)
		s.ProjectID = projects[row.projectID]
		out = append(out, s)
	}
	return out, nil
}
