package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magehall/mission-tracker/internal/model"
	"github.com/magehall/mission-tracker/internal/repository"
)

// This file exercises the lost-update guarantee: two completions for
// the same user must serialize on the locked progression row, so the
// second applies its delta to the first one's committed state rather
// than to a stale read. sqlmock cannot block a query, so the test
// runs the ledger against a small in-memory driver whose
// SELECT ... FOR UPDATE takes a real mutex that is only released on
// commit or rollback.

// lockedUserStore is the single user row the fake driver serves.
type lockedUserStore struct {
	rowMu sync.Mutex // the row lock a FOR UPDATE read acquires

	mu    sync.Mutex // guards the fields below
	level int
	xp    int
	limit int
	reads []int // current_xp observed by each locked read, in order
}

type pendingProgressWrite struct {
	level, xp, limit int
}

type lockConn struct {
	store  *lockedUserStore
	userID string

	holds   bool
	pending *pendingProgressWrite
}

func (c *lockConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements not supported")
}

func (c *lockConn) Close() error {
	c.release()
	return nil
}

func (c *lockConn) Begin() (driver.Tx, error) {
	return lockTx{c}, nil
}

func (c *lockConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return lockTx{c}, nil
}

func (c *lockConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	switch {
	case strings.Contains(query, "FROM users"):
		// Block here until the holder commits or rolls back, exactly
		// like a row lock on the user's progression row.
		c.store.rowMu.Lock()
		c.holds = true

		c.store.mu.Lock()
		defer c.store.mu.Unlock()
		c.store.reads = append(c.store.reads, c.store.xp)
		return &valueRows{
			cols: []string{"id_user", "level", "current_xp", "xp_limit"},
			rows: [][]driver.Value{{c.userID, int64(c.store.level), int64(c.store.xp), int64(c.store.limit)}},
		}, nil
	case strings.Contains(query, "FROM missions"):
		id := args[0].Value.(int64)
		return &valueRows{
			cols: []string{"id_mission", "id_user", "original_description", "fantasy_description", "status", "creation_date", "due_date"},
			rows: [][]driver.Value{{id, c.userID, "feed the dog", "Feed the guardian beast", model.StatusPending, "2026-08-01", nil}},
		}, nil
	}
	return nil, errors.New("unexpected query: " + query)
}

func (c *lockConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	switch {
	case strings.Contains(query, "UPDATE missions"):
		return driver.RowsAffected(1), nil
	case strings.Contains(query, "UPDATE users"):
		// Buffered until commit, like any transactional write.
		c.pending = &pendingProgressWrite{
			level: int(args[0].Value.(int64)),
			xp:    int(args[1].Value.(int64)),
			limit: int(args[2].Value.(int64)),
		}
		return driver.RowsAffected(1), nil
	}
	return nil, errors.New("unexpected exec: " + query)
}

func (c *lockConn) release() {
	if c.holds {
		c.holds = false
		c.store.rowMu.Unlock()
	}
}

type lockTx struct {
	c *lockConn
}

func (t lockTx) Commit() error {
	if w := t.c.pending; w != nil {
		t.c.store.mu.Lock()
		t.c.store.level, t.c.store.xp, t.c.store.limit = w.level, w.xp, w.limit
		t.c.store.mu.Unlock()
		t.c.pending = nil
	}
	t.c.release()
	return nil
}

func (t lockTx) Rollback() error {
	t.c.pending = nil
	t.c.release()
	return nil
}

type lockConnector struct {
	store  *lockedUserStore
	userID string
}

func (l *lockConnector) Connect(context.Context) (driver.Conn, error) {
	return &lockConn{store: l.store, userID: l.userID}, nil
}

func (l *lockConnector) Driver() driver.Driver { return lockDriver{} }

type lockDriver struct{}

func (lockDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type valueRows struct {
	cols []string
	rows [][]driver.Value
	i    int
}

func (r *valueRows) Columns() []string { return r.cols }
func (r *valueRows) Close() error      { return nil }

func (r *valueRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}

func TestCompleteMissionSerializesOnUserRowLock(t *testing.T) {
	store := &lockedUserStore{level: 2, xp: 50, limit: 100}
	db := sql.OpenDB(&lockConnector{store: store, userID: testUserID})
	defer db.Close()

	l := NewXPLedger(repository.NewUserRepo(db), repository.NewMissionRepo(db), LedgerConfig{
		DeltaMin:       10,
		DeltaMax:       35,
		LimitIncrement: 10,
		LevelCap:       50,
	})
	l.drawXP = func(min, max int) int { return 30 }

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []int64{7, 8} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := l.CompleteMission(context.Background(), id, testUserID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	// Whichever completion ran second read 80, not the stale 50: the
	// first delta stayed below the limit and the second crossed it.
	require.Equal(t, []int{50, 80}, store.reads)

	// Both deltas survive: 50 -> 80, then 80+30 levels up with a
	// remainder of 10 and a grown limit.
	assert.Equal(t, 3, store.level)
	assert.Equal(t, 10, store.xp)
	assert.Equal(t, 110, store.limit)
}
