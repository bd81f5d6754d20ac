package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
)

var taskCols = []string{
	"id", "title", "description", "status", "priority", "tags", "owner_id", "assignee_ids",
	"project_id", "due_date", "created_at", "time_taken", "archived",
}

func newMock(t *testing.T) (sqlmock.Sqlmock, TaskRepository, SubtaskRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewTaskRepository(db), NewSubtaskRepository(db)
}

func TestFindTasks_PopulatesReferences(t *testing.T) {
	mock, repo, _ := newMock(t)
	created := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE project_id = \$1 AND archived = FALSE ORDER BY created_at ASC, id ASC`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow(1, "Write docs", "", "Done", 3, "docs", 1, "{1,2}", 10, due, created, 45, false).
			AddRow(2, "Ship", "", "To Do", nil, nil, nil, "{}", 10, nil, created, 0, false))
	mock.ExpectQuery(`SELECT id, username, department, roles FROM users WHERE id = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "department", "roles"}).
			AddRow(1, "alice", "Engineering", "{staff}").
			AddRow(2, "bob", "Marketing", "{manager}"))
	mock.ExpectQuery(`SELECT p.id, p.name, u.id, u.username, u.department, u.roles\s+FROM projects p`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "id", "username", "department", "roles"}).
			AddRow(10, "Apollo", 2, "bob", "Marketing", "{manager}"))

	pid := int64(10)
	tasks, err := repo.FindTasks(context.Background(), models.TaskQuery{ProjectID: &pid, ExcludeArchived: true})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	first := tasks[0]
	assert.Equal(t, models.StatusCompleted, first.Status)
	assert.Equal(t, 3, first.Priority)
	assert.Equal(t, "alice", first.Owner.Username)
	require.Len(t, first.Assignee, 2)
	assert.Equal(t, "bob", first.Assignee[1].Username)
	assert.Equal(t, "Apollo", first.Project.Name)
	assert.Equal(t, "bob", first.Project.Owner.Username)
	require.NotNil(t, first.DueDate)
	assert.Equal(t, due, *first.DueDate)

	second := tasks[1]
	assert.Nil(t, second.Owner)
	assert.NotNil(t, second.Assignee)
	assert.Empty(t, second.Assignee)
	assert.Equal(t, 0, second.Priority)
	assert.Nil(t, second.DueDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTasks_MemberAndStatusFilters(t *testing.T) {
	mock, repo, _ := newMock(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery(`FROM tasks WHERE \(owner_id = \$1 OR \$1 = ANY\(assignee_ids\)\) AND created_at >= \$2 AND created_at <= \$3 AND status <> ALL\(\$4\)`).
		WithArgs(int64(5), from, to, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(taskCols))

	member := int64(5)
	tasks, err := repo.FindTasks(context.Background(), models.TaskQuery{
		MemberID:        &member,
		CreatedFrom:     &from,
		CreatedTo:       &to,
		ExcludeStatuses: []models.TaskStatus{models.StatusBlocked},
	})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTasks_DepartmentFilter(t *testing.T) {
	mock, repo, sub := newMock(t)
	dept := "Engineering"
	q := models.TaskQuery{Department: &dept, ExcludeArchived: true}
	want := `WHERE EXISTS \(SELECT 1 FROM users u WHERE u.department = \$1 AND \(u.id = owner_id OR u.id = ANY\(assignee_ids\)\)\) AND archived = FALSE`

	mock.ExpectQuery(`FROM tasks ` + want).WithArgs("Engineering").WillReturnRows(sqlmock.NewRows(taskCols))
	tasks, err := repo.FindTasks(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	mock.ExpectQuery(`FROM subtasks ` + want).WithArgs("Engineering").WillReturnError(errors.New("db down"))
	_, err = sub.FindSubtasks(context.Background(), q)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTasks_QueryError(t *testing.T) {
	mock, repo, _ := newMock(t)
	boom := errors.New("db down")
	mock.ExpectQuery(`SELECT .+ FROM tasks`).WillReturnError(boom)

	_, err := repo.FindTasks(context.Background(), models.TaskQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestTaskFindByID_NotFound(t *testing.T) {
	mock, repo, _ := newMock(t)
	mock.ExpectQuery(`FROM tasks WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(taskCols))

	_, err := repo.FindByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskAddTime(t *testing.T) {
	mock, repo, _ := newMock(t)
	mock.ExpectExec(`UPDATE tasks SET time_taken = time_taken \+ \$1 WHERE id=\$2`).
		WithArgs(30, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tasks SET time_taken`).
		WithArgs(30, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddTime(context.Background(), 3, 30))
	assert.ErrorIs(t, repo.AddTime(context.Background(), 4, 30), ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSubtasks_ProjectAlwaysResolved(t *testing.T) {
	mock, _, repo := newMock(t)
	created := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "title", "description", "status", "priority", "tags", "owner_id", "assignee_ids",
		"project_id", "parent_task_id", "due_date", "created_at", "time_taken", "archived",
	}

	mock.ExpectQuery(`SELECT .+ FROM subtasks ORDER BY created_at ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(4, "Proofread", "", "In Progress", 2, "", 1, "{}", 10, 1, nil, created, 20, false))
	mock.ExpectQuery(`FROM users WHERE id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "department", "roles"}).
			AddRow(1, "alice", "Engineering", "{staff}"))
	mock.ExpectQuery(`FROM projects p`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "id", "username", "department", "roles"}).
			AddRow(10, "Apollo", nil, nil, nil, nil))

	subs, err := repo.FindSubtasks(context.Background(), models.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "alice", subs[0].OwnerID.Username)
	assert.Equal(t, "Apollo", subs[0].ProjectID.Name)
	assert.Nil(t, subs[0].ProjectID.Owner)
	assert.Equal(t, int64(1), subs[0].ParentTaskID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
