package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"taskflow/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// FindUserByID returns (nil, nil) when the user doesn't exist.
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, department, roles, role_id, password_hash`

func scanUser(s interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		roles  pq.StringArray
		roleID sql.NullInt64
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Department, &roles, &roleID, &u.PasswordHash); err != nil {
		return nil, err
	}
	u.Roles = []string(roles)
	if roleID.Valid {
		u.RoleID = int(roleID.Int64)
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (username, department, roles, role_id, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.DB.QueryRowContext(ctx, q,
		user.Username, user.Department, pq.Array(user.Roles), user.RoleID, user.PasswordHash,
	).Scan(&user.ID)
}

func (r *userRepository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
