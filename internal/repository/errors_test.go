package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictSentinels(t *testing.T) {
	// Both state-conflict sentinels share the ErrConflict base so a
	// caller can translate either into a 409 with one check, while
	// the specific sentinels keep matching on their own.
	assert.ErrorIs(t, ErrNotPending, ErrConflict)
	assert.ErrorIs(t, ErrXPAtLimit, ErrConflict)
	assert.NotErrorIs(t, ErrNotPending, ErrXPAtLimit)
	assert.NotErrorIs(t, ErrConflict, ErrNotPending)
}
