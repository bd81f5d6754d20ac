package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
)

func TestFindProjectByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, name, owner_id, created_at FROM projects WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at"}).
			AddRow(10, "Apollo", 2, created))
	mock.ExpectQuery(`SELECT user_id FROM project_members`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(`FROM users WHERE id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "department", "roles"}).
			AddRow(1, "alice", "Engineering", "{staff}").
			AddRow(2, "bob", "Marketing", "{manager}"))

	p, err := repo.FindProjectByID(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "bob", p.Owner.Username)
	require.Len(t, p.Members, 2)
	assert.Equal(t, "alice", p.Members[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindProjectByID_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at"}))

	p, err := repo.FindProjectByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestFindUserByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	cols := []string{"id", "username", "department", "roles", "role_id", "password_hash"}
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "alice", "Engineering", "{staff,manager}", 2, "hash"))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols))

	u, err := repo.FindUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"staff", "manager"}, u.Roles)
	assert.Equal(t, 2, u.RoleID)

	missing, err := repo.FindUserByID(context.Background(), 2)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProjectCreateAndMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO projects \(name, owner_id\) VALUES \(\$1, \$2\) RETURNING id, created_at`).
		WithArgs("Apollo", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, created))
	mock.ExpectExec(`INSERT INTO project_members \(project_id, user_id\) VALUES \(\$1, \$2\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &models.Project{Name: "Apollo", Owner: &models.UserRef{ID: 2}}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(10), p.ID)
	assert.Equal(t, created, p.CreatedAt)

	require.NoError(t, repo.AddMember(context.Background(), 10, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, name, created_at FROM projects ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(10, "Apollo", created).
			AddRow(11, "Gemini", created))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Gemini", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
