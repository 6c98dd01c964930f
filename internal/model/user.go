package model

import "time"

// User represents a row in the `users` table. The identifier is the
// string UUID issued by the identity provider; all other tables
// reference users through it. The progression triple (Level,
// CurrentXP, XPLimit) is only ever mutated by the XP ledger inside a
// locked transaction, and must satisfy 0 <= CurrentXP < XPLimit after
// every update, except at the level cap where CurrentXP == XPLimit is
// allowed.
//
// Fields:
//  ID        – users.id_user (CHAR(36) UUID from the identity provider).
//  Username  – users.username.
//  Email     – users.email.
//  Gender    – users.gender.
//  Level     – users.level, starts at 1, never decreases.
//  CurrentXP – users.current_xp.
//  XPLimit   – users.xp_limit, threshold for the current level.
//  CreatedAt – users.created_at.
//  UpdatedAt – users.updated_at.
type User struct {
	ID        string    // users.id_user
	Username  string    // users.username
	Email     string    // users.email
	Gender    string    // users.gender
	Level     int       // users.level
	CurrentXP int       // users.current_xp
	XPLimit   int       // users.xp_limit
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}

// Progress is the slice of a user's row that the XP ledger reads
// under SELECT ... FOR UPDATE and writes back before committing.
// Keeping it separate from User makes it explicit which columns
// participate in the completion transaction.
type Progress struct {
	UserID    string // users.id_user
	Level     int    // users.level
	CurrentXP int    // users.current_xp
	XPLimit   int    // users.xp_limit
}
