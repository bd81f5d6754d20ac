package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"taskflow/internal/models"
)

// refResolver loads user and project references in bulk so task rows can be
// populated with one follow-up query per entity type.
type refResolver struct {
	db *sql.DB
}

func (r refResolver) users(ctx context.Context, ids []int64) (map[int64]*models.UserRef, error) {
	out := make(map[int64]*models.UserRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, department, roles FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u := &models.UserRef{}
		var roles pq.StringArray
		if err := rows.Scan(&u.ID, &u.Username, &u.Department, &roles); err != nil {
			return nil, err
		}
		u.Roles = []string(roles)
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r refResolver) projects(ctx context.Context, ids []int64) (map[int64]*models.ProjectRef, error) {
	out := make(map[int64]*models.ProjectRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
		SELECT p.id, p.name, u.id, u.username, u.department, u.roles
		FROM projects p
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE p.id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.ProjectRef{}
		var (
			ownerID   sql.NullInt64
			ownerName sql.NullString
			ownerDept sql.NullString
			roles     pq.StringArray
		)
		if err := rows.Scan(&p.ID, &p.Name, &ownerID, &ownerName, &ownerDept, &roles); err != nil {
			return nil, err
		}
		if ownerID.Valid {
			p.Owner = &models.UserRef{
				ID:         ownerID.Int64,
				Username:   ownerName.String,
				Department: ownerDept.String,
				Roles:      []string(roles),
			}
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// idSet collects distinct non-zero IDs in first-seen order.
type idSet struct {
	seen map[int64]struct{}
	ids  []int64
}

func (s *idSet) add(ids ...int64) {
	if s.seen == nil {
		s.seen = make(map[int64]struct{})
	}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

// resolveUsers maps IDs to loaded refs, dropping IDs whose user no longer
// exists. The result is never nil.
func resolveUsers(ids []int64, users map[int64]*models.UserRef) []*models.UserRef {
	out := make([]*models.UserRef, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

// queryFilter builds the WHERE clause shared by the task and subtask report
// queries. Placeholders start at $1.
func queryFilter(q models.TaskQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ProjectID != nil {
		conds = append(conds, "project_id = "+next(*q.ProjectID))
	}
	if q.MemberID != nil {
		p := next(*q.MemberID)
		conds = append(conds, fmt.Sprintf("(owner_id = %s OR %s = ANY(assignee_ids))", p, p))
	}
	if q.Department != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM users u WHERE u.department = "+next(*q.Department)+
			" AND (u.id = owner_id OR u.id = ANY(assignee_ids)))")
	}
	if q.CreatedFrom != nil {
		conds = append(conds, "created_at >= "+next(*q.CreatedFrom))
	}
	if q.CreatedTo != nil {
		conds = append(conds, "created_at <= "+next(*q.CreatedTo))
	}
	if len(q.ExcludeStatuses) > 0 {
		statuses := make([]string, len(q.ExcludeStatuses))
		for i, s := range q.ExcludeStatuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status <> ALL("+next(pq.Array(statuses))+")")
	}
	if q.ExcludeArchived {
		conds = append(conds, "archived = FALSE")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
