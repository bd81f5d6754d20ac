package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"taskflow/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error
	AddTime(ctx context.Context, id int64, minutes int) error
	Archive(ctx context.Context, id int64) error

	// FindTasks returns populated tasks for report generation.
	FindTasks(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
}

type taskRepository struct {
	db   *sql.DB
	refs refResolver
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db, refs: refResolver{db: db}}
}

const taskColumns = `id, title, description, status, priority, tags, owner_id, assignee_ids,
       project_id, due_date, created_at, time_taken, archived`

// taskRow holds the raw foreign keys until populate resolves them.
type taskRow struct {
	task      models.Task
	ownerID   sql.NullInt64
	assignees pq.Int64Array
	projectID sql.NullInt64
}

func scanTask(s interface{ Scan(...any) error }) (*taskRow, error) {
	var (
		row      taskRow
		status   string
		priority sql.NullInt64
		tags     sql.NullString
	)
	t := &row.task
	err := s.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &tags, &row.ownerID, &row.assignees,
		&row.projectID, &t.DueDate, &t.CreatedAt, &t.TimeTaken, &t.Archived,
	)
	if err != nil {
		return nil, err
	}
	t.Status = models.CanonicalStatus(status)
	t.Priority = int(priority.Int64)
	t.Tags = tags.String
	return &row, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			title, description, status, priority, tags, owner_id, assignee_ids,
			project_id, due_date, time_taken, archived
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`

	var ownerID, projectID *int64
	if task.Owner != nil {
		ownerID = &task.Owner.ID
	}
	if task.Project != nil {
		projectID = &task.Project.ID
	}
	return r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, nullPriority(task.Priority), task.Tags,
		ownerID, pq.Array(refIDs(task.Assignee)), projectID, task.DueDate, task.TimeTaken, task.Archived,
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	row, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	tasks, err := r.populate(ctx, []*taskRow{row})
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []any{}
	argID := 1

	if filter.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argID))
		args = append(args, *filter.ProjectID)
		argID++
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argID))
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(assignee_ids)", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("archived = $%d", argID))
		args = append(args, *filter.Archived)
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	return r.query(ctx, baseQuery, args...)
}

func (r *taskRepository) FindTasks(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	where, args := queryFilter(q)
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY created_at ASC, id ASC`, args...)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	return execOne(ctx, r.db, ErrTaskNotFound,
		`UPDATE tasks SET status=$1 WHERE id=$2`, to, id)
}

func (r *taskRepository) AddTime(ctx context.Context, id int64, minutes int) error {
	return execOne(ctx, r.db, ErrTaskNotFound,
		`UPDATE tasks SET time_taken = time_taken + $1 WHERE id=$2`, minutes, id)
}

func (r *taskRepository) Archive(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, ErrTaskNotFound,
		`UPDATE tasks SET archived = TRUE WHERE id=$1`, id)
}

func (r *taskRepository) query(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []*taskRow
	for rows.Next() {
		row, err := scanTask(rows)
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

// populate resolves owner, assignee and project references for the rows.
func (r *taskRepository) populate(ctx context.Context, raw []*taskRow) ([]models.Task, error) {
	out := make([]models.Task, 0, len(raw))
	if len(raw) == 0 {
		return out, nil
	}

	var userIDs, projectIDs idSet
	for _, row := range raw {
		userIDs.add(row.ownerID.Int64)
		userIDs.add(row.assignees...)
		projectIDs.add(row.projectID.Int64)
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
		t := row.task
		if row.ownerID.Valid {
			t.Owner = users[row.ownerID.Int64]
		}
		t.Assignee = resolveUsers(row.assignees, users)
		if row.projectID.Valid {
			t.Project = projects[row.projectID.Int64]
		}
		out = append(out, t)
	}
	return out, nil
}

func execOne(ctx context.Context, db *sql.DB, notFound error, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func refIDs(refs []*models.UserRef) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, u := range refs {
		if u != nil && u.ID != 0 {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

func nullPriority(p int) any {
	if p == 0 {
		return nil
	}
	return p
}
