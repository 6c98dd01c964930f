package repository

import (
	"context"
	"database/sql"

	"github.com/magehall/mission-tracker/internal/model"
)

// UserRepo provides access to the `users` table: existence checks and
// profile reads/updates for the thin profile endpoints, plus the
// locked progression read/write pair that the XP ledger runs inside
// its completion transaction.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so that callers can open
// transactions spanning more than one repository.
func (r *UserRepo) DB() *sql.DB { return r.db }

// Exists reports whether a user with the given identifier exists.
func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT 1 FROM users WHERE id_user = ?`
	var one int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID returns a user's full profile row. Returns sql.ErrNoRows
// when no such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id_user, username, email, gender, level, current_xp, xp_limit, created_at, updated_at
	           FROM users WHERE id_user = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.Gender,
		&u.Level, &u.CurrentXP, &u.XPLimit,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile mutates the descriptive attributes of a user. The
// progression columns are deliberately out of reach here: only the XP
// ledger writes those, and only under lock. Returns sql.ErrNoRows
// when the user does not exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, username, email, gender string) error {
	const q = `UPDATE users SET username = ?, email = ?, gender = ? WHERE id_user = ?`
	res, err := r.db.ExecContext(ctx, q, username, email, gender, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows both for a missing user and
		// for an update that changes nothing. Distinguish by existence.
		ok, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return sql.ErrNoRows
		}
	}
	return nil
}

// GetProgressForUpdateTx reads a user's progression triple inside an
// existing transaction with SELECT ... FOR UPDATE. Two concurrent
// completions for the same user serialize on this lock, so neither
// can apply its delta against a stale current_xp (lost-update
// prevention). Returns sql.ErrNoRows when the user does not exist.
func (r *UserRepo) GetProgressForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Progress, error) {
	const q = `SELECT id_user, level, current_xp, xp_limit FROM users WHERE id_user = ? FOR UPDATE`
	var p model.Progress
	if err := tx.QueryRowContext(ctx, q, id).Scan(&p.UserID, &p.Level, &p.CurrentXP, &p.XPLimit); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProgressTx writes back a progression triple within the same
// transaction that read it under lock. The caller must commit or
// rollback.
func (r *UserRepo) UpdateProgressTx(ctx context.Context, tx *sql.Tx, p *model.Progress) error {
	const q = `UPDATE users SET level = ?, current_xp = ?, xp_limit = ? WHERE id_user = ?`
	_, err := tx.ExecContext(ctx, q, p.Level, p.CurrentXP, p.XPLimit, p.UserID)
	return err
}
