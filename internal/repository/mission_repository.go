package repository

import (
	"context"
	"database/sql"

	"github.com/magehall/mission-tracker/internal/model"
)

// MissionRepo provides CRUD operations for missions. Missions belong
// to a single user and move through a one-directional status
// lifecycle; the repository enforces owner scoping on transitions and
// leaves validation of incoming payloads to the handler layer. All
// values are passed as bound parameters, never interpolated.
type MissionRepo struct {
	db *sql.DB
}

// NewMissionRepo returns a new MissionRepo bound to the given database.
func NewMissionRepo(db *sql.DB) *MissionRepo { return &MissionRepo{db: db} }

// DB exposes the underlying handle so that callers can open
// transactions spanning more than one repository.
func (r *MissionRepo) DB() *sql.DB { return r.db }

// missionColumns is the canonical select list. Every scan of a mission
// row goes through scanMission so the decode happens exactly once, in
// one place.
const missionColumns = `id_mission, id_user, original_description, fantasy_description, status, DATE_FORMAT(creation_date, '%Y-%m-%d'), DATE_FORMAT(due_date, '%Y-%m-%d')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMission(rs rowScanner) (*model.Mission, error) {
	var m model.Mission
	var due sql.NullString
	if err := rs.Scan(&m.ID, &m.UserID, &m.OriginalDescription, &m.FantasyDescription, &m.Status, &m.CreationDate, &due); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.String
		m.DueDate = &d
	}
	return &m, nil
}

// GetByID returns a single mission by its identifier. It returns
// sql.ErrNoRows when no such mission exists.
func (r *MissionRepo) GetByID(ctx context.Context, id int64) (*model.Mission, error) {
	const q = `SELECT ` + missionColumns + ` FROM missions WHERE id_mission = ?`
	return scanMission(r.db.QueryRowContext(ctx, q, id))
}

// GetAll returns missions, optionally filtered by status. An empty
// status returns every mission. The result is ordered by creation
// date descending so recent missions come first; an empty slice (not
// nil) is returned when nothing matches.
func (r *MissionRepo) GetAll(ctx context.Context, status string) ([]model.Mission, error) {
	q := `SELECT ` + missionColumns + ` FROM missions`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY creation_date DESC, id_mission DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Mission, 0)
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert stores a new mission and populates the generated ID on the
// provided record. The caller is expected to have validated the
// payload; the due date may be nil for open-ended missions.
func (r *MissionRepo) Insert(ctx context.Context, m *model.Mission) error {
	const q = `INSERT INTO missions (id_user, original_description, fantasy_description, status, creation_date, due_date)
	           VALUES (?, ?, ?, ?, ?, ?)`
	var due any
	if m.DueDate != nil {
		due = *m.DueDate
	}
	res, err := r.db.ExecContext(ctx, q, m.UserID, m.OriginalDescription, m.FantasyDescription, m.Status, m.CreationDate, due)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// GetForUpdateTx reads a mission inside an existing transaction with a
// row lock, so a concurrent completion or cancellation of the same
// mission serializes behind the caller. Returns sql.ErrNoRows when the
// mission does not exist.
func (r *MissionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Mission, error) {
	const q = `SELECT ` + missionColumns + ` FROM missions WHERE id_mission = ? FOR UPDATE`
	return scanMission(tx.QueryRowContext(ctx, q, id))
}

// SetStatusTx updates a mission's status within the scope of an
// existing transaction. The caller must commit or rollback.
func (r *MissionRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	const q = `UPDATE missions SET status = ? WHERE id_mission = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// TransitionFromPending moves a mission from pending to the given
// terminal status on behalf of its owner. Ownership is enforced at
// the row-match level: a mission that does not exist and a mission
// owned by somebody else both come back as sql.ErrNoRows, so callers
// surface a single not-found error and never leak whose mission an id
// is. A mission that exists for the owner but has already left the
// pending state yields ErrNotPending.
func (r *MissionRepo) TransitionFromPending(ctx context.Context, id int64, ownerID, status string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT status FROM missions WHERE id_mission = ? AND id_user = ? FOR UPDATE`
	var current string
	if err := tx.QueryRowContext(ctx, q, id, ownerID).Scan(&current); err != nil {
		return err
	}
	if current != model.StatusPending {
		return ErrNotPending
	}
	const upd = `UPDATE missions SET status = ? WHERE id_mission = ? AND id_user = ?`
	if _, err := tx.ExecContext(ctx, upd, status, id, ownerID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SweepExpired fails every pending mission whose due date has passed.
// Missions without a due date are never touched. The comparison runs
// in SQL against the database clock so application and database agree
// on "today". Returns the number of missions transitioned.
func (r *MissionRepo) SweepExpired(ctx context.Context) (int64, error) {
	const q = `UPDATE missions SET status = ?
	           WHERE status = ? AND due_date IS NOT NULL AND due_date < CURDATE()`
	res, err := r.db.ExecContext(ctx, q, model.StatusFailed, model.StatusPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
