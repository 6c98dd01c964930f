// Package service holds the business logic that spans more than one
// repository: the XP ledger that settles mission completions, the
// reward assigner that follows level-ups, and the queue publisher for
// progress events.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"github.com/magehall/mission-tracker/internal/model"
	"github.com/magehall/mission-tracker/internal/repository"
)

// LedgerConfig carries the progression tunables, injected from the
// application config so tests can pin them.
type LedgerConfig struct {
	DeltaMin       int // smallest experience draw per completion
	DeltaMax       int // largest experience draw per completion
	LimitIncrement int // xp_limit growth on level-up
	LevelCap       int // maximum reachable level
}

// CompletionResult reports the outcome of a settled completion to the
// handler layer.
type CompletionResult struct {
	MissionID int64  `json:"id_mission"`
	UserID    string `json:"id_user"`
	Delta     int    `json:"xp"`
	Level     int    `json:"level"`
	CurrentXP int    `json:"current_xp"`
	XPLimit   int    `json:"xp_limit"`
	LevelUp   bool   `json:"level_up"`
}

// XPLedger settles mission completions: it marks the mission
// completed and applies the experience gain to the owning user in one
// transaction, so neither write can land without the other. The
// user's row is read under SELECT ... FOR UPDATE for the whole
// transaction; concurrent completions for the same user serialize
// behind that lock instead of racing on a stale current_xp.
type XPLedger struct {
	users    *repository.UserRepo
	missions *repository.MissionRepo
	cfg      LedgerConfig
	drawXP   func(min, max int) int
}

// NewXPLedger builds an XPLedger over the given repositories. Both
// repositories must share one database handle.
func NewXPLedger(users *repository.UserRepo, missions *repository.MissionRepo, cfg LedgerConfig) *XPLedger {
	return &XPLedger{
		users:    users,
		missions: missions,
		cfg:      cfg,
		drawXP: func(min, max int) int {
			return min + rand.IntN(max-min+1)
		},
	}
}

// CompleteMission runs the completion transaction for one mission on
// behalf of its owner.
//
// Error contract:
//   - sql.ErrNoRows            – user unknown, mission unknown, or the
//     mission belongs to another user (collapsed deliberately so the
//     caller cannot probe other users' mission ids).
//   - repository.ErrXPAtLimit  – the user's current_xp is already at
//     xp_limit (the level-cap terminal state).
//   - repository.ErrNotPending – the mission already left the pending
//     state; retrying a completion must not grant experience twice.
//
// Any other error is a dependency failure; in every error case the
// transaction is rolled back and no write survives.
func (l *XPLedger) CompleteMission(ctx context.Context, missionID int64, userID string) (*CompletionResult, error) {
	tx, err := l.users.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin completion tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the user's progression row for the rest of the transaction.
	prog, err := l.users.GetProgressForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if prog.CurrentXP >= prog.XPLimit {
		return nil, repository.ErrXPAtLimit
	}

	// The mission must exist, belong to the caller, and still be
	// pending. Ownership mismatch reads as not-found.
	m, err := l.missions.GetForUpdateTx(ctx, tx, missionID)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, sql.ErrNoRows
	}
	if m.Status != model.StatusPending {
		return nil, repository.ErrNotPending
	}

	delta := l.drawXP(l.cfg.DeltaMin, l.cfg.DeltaMax)

	if err := l.missions.SetStatusTx(ctx, tx, missionID, model.StatusCompleted); err != nil {
		return nil, fmt.Errorf("mark mission completed: %w", err)
	}

	levelUp := l.apply(prog, delta)

	if err := l.users.UpdateProgressTx(ctx, tx, prog); err != nil {
		return nil, fmt.Errorf("update progression: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit completion tx: %w", err)
	}
	committed = true

	return &CompletionResult{
		MissionID: missionID,
		UserID:    userID,
		Delta:     delta,
		Level:     prog.Level,
		CurrentXP: prog.CurrentXP,
		XPLimit:   prog.XPLimit,
		LevelUp:   levelUp,
	}, nil
}

// apply adds delta to the progression triple in place and reports
// whether a level-up happened. Below the threshold the xp simply
// accumulates. At or above it the user gains a level: the remainder
// carries over and the threshold grows by the configured increment,
// except at the level cap, where current_xp is clamped to xp_limit
// and neither level nor limit move again (the clamp is what makes a
// later completion attempt fail the at-limit guard).
func (l *XPLedger) apply(p *model.Progress, delta int) bool {
	newXP := p.CurrentXP + delta
	if newXP < p.XPLimit {
		p.CurrentXP = newXP
		return false
	}

	newLevel := p.Level + 1
	if newLevel >= l.cfg.LevelCap {
		p.Level = l.cfg.LevelCap
		p.CurrentXP = p.XPLimit
		return true
	}

	p.CurrentXP = newXP - p.XPLimit
	p.Level = newLevel
	p.XPLimit += l.cfg.LimitIncrement
	return true
}
