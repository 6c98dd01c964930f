// Package queue defines message payloads exchanged over the message broker.
package queue

// MissionCompletedEvent is published after a completion transaction
// commits. It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type MissionCompletedEvent struct {
	MissionID     int64  `json:"id_mission"`
	UserID        string `json:"id_user"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	CurrentXP     int    `json:"current_xp"`
	XPLimit       int    `json:"xp_limit"`
	LevelUp       bool   `json:"level_up"`
	RewardUpdated bool   `json:"reward_updated"`
	CompletedAt   string `json:"completed_at"`
}
