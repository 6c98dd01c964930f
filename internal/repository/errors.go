// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios without string matching. Not-found conditions are
// reported as sql.ErrNoRows straight from the driver; only states
// that need extra nuance get their own sentinel here.
package repository

import (
	"errors"
	"fmt"
)

// ErrConflict is the shared base for every state-conflict sentinel
// below. Handlers that do not care which state rule was violated can
// match this one value and translate it into an HTTP 409 response;
// the specific sentinels still match individually through errors.Is.
var ErrConflict = errors.New("conflict")

// ErrNotPending is returned when a status transition is attempted on
// a mission that has already left the pending state. Completing or
// cancelling a terminal mission must be rejected loudly rather than
// silently re-applied, otherwise a retried completion would grant
// experience twice. Maps to HTTP 409.
var ErrNotPending = fmt.Errorf("mission is not pending: %w", ErrConflict)

// ErrXPAtLimit is returned when a completion finds the user's
// current_xp already at xp_limit. Outside the level cap this state
// should be unreachable, but the ledger checks it before writing
// anything. Maps to HTTP 409.
var ErrXPAtLimit = fmt.Errorf("experience already at limit: %w", ErrConflict)
