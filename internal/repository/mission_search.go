package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magehall/mission-tracker/internal/model"
)

// MissionSearchQuery defines filters & pagination for searching a
// user's missions. Query matches against both the original and the
// fantasy description. OrderBy and Order are the only values ever
// interpolated into SQL and must therefore pass the allow-lists
// below; everything else travels as bound parameters.
type MissionSearchQuery struct {
	UserID   string
	Query    string
	Status   string
	OrderBy  string
	Order    string
	Page     int
	PageSize int
}

// orderableColumns is the allow-list for the ORDER BY column. Keys are
// the wire names, values the SQL expression to interpolate.
var orderableColumns = map[string]string{
	"creation_date": "creation_date",
	"due_date":      "due_date",
	"id_mission":    "id_mission",
}

// orderDirections is the allow-list for the sort direction.
var orderDirections = map[string]string{
	"ASC":  "ASC",
	"DESC": "DESC",
}

// Search returns one page of a user's missions matching the query,
// along with the total match count for pagination. The search term is
// matched with LIKE against both descriptions. An OrderBy or Order
// value outside the allow-lists is rejected before any SQL is built.
func (r *MissionRepo) Search(ctx context.Context, q MissionSearchQuery) ([]model.Mission, int64, error) {
	col, ok := orderableColumns[q.OrderBy]
	if !ok {
		return nil, 0, fmt.Errorf("order_by %q is not sortable", q.OrderBy)
	}
	dir, ok := orderDirections[strings.ToUpper(q.Order)]
	if !ok {
		return nil, 0, fmt.Errorf("order %q is not a valid direction", q.Order)
	}
	if q.Page < 1 {
		q.Page = 1
	}

	cond := `id_user = ?
		AND (original_description LIKE ? OR fantasy_description LIKE ?)
		AND status = ?`
	like := "%" + q.Query + "%"
	args := []any{q.UserID, like, like, q.Status}

	var total int64
	countSQL := `SELECT COUNT(*) FROM missions WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT ` + missionColumns + `
		FROM missions
		WHERE ` + cond + `
		ORDER BY ` + col + ` ` + dir + `
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Mission, 0, limit)
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
