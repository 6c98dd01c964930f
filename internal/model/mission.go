package model

// Mission status values. A mission is created as StatusPending and
// moves exactly once to one of the terminal states: completed via the
// completion flow, cancelled via the cancel flow, failed via the
// expiration sweep. Terminal missions are never reopened.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusFailed     = "failed"
)

// ValidStatuses lists the statuses accepted on insert. StatusFailed is
// deliberately absent: only the expiration sweep produces it.
var ValidStatuses = []string{StatusPending, StatusCompleted, StatusCancelled, StatusInProgress}

// IsValidStatus reports whether s may be supplied by a client when
// creating a mission.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Mission represents a row in the `missions` table. Dates are kept as
// YYYY-MM-DD strings because that is both the wire format and the DATE
// column format; nothing in the application does arithmetic on them
// beyond the expiration comparison, which happens in SQL.
//
// Fields:
//  ID                  – missions.id_mission (auto increment).
//  UserID              – missions.id_user (owning user UUID).
//  OriginalDescription – missions.original_description (what the user typed).
//  FantasyDescription  – missions.fantasy_description (mage-generated flavor).
//  Status              – missions.status (see constants above).
//  CreationDate        – missions.creation_date (YYYY-MM-DD).
//  DueDate             – missions.due_date (YYYY-MM-DD, nil when open-ended).
type Mission struct {
	ID                  int64   `json:"id_mission"`
	UserID              string  `json:"id_user"`
	OriginalDescription string  `json:"original_description"`
	FantasyDescription  string  `json:"fantasy_description"`
	Status              string  `json:"status"`
	CreationDate        string  `json:"creation_date"`
	DueDate             *string `json:"due_date"`
}
