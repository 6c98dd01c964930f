package model

// Reward represents a row in the `rewards` table. Tiers are ordered by
// ID and gated by UnlockLevel; the cosmetic payload is what the client
// renders when a user reaches the tier.
//
// Fields:
//  ID          – rewards.id_reward (ordered tier identifier).
//  UnlockLevel – rewards.unlock_level (minimum user level for the tier).
//  WizardTitle – rewards.wizard_title (cosmetic title).
//  ImageURL    – rewards.image_url (cosmetic image reference).
type Reward struct {
	ID          int    `json:"id_reward"`
	UnlockLevel int    `json:"unlock_level"`
	WizardTitle string `json:"wizard_title"`
	ImageURL    string `json:"image_url"`
}

// UserReward associates a user with the reward tier they currently
// hold. There is at most one row per user and the id_reward in it only
// ever increases.
type UserReward struct {
	UserID   string `json:"id_user"`   // user_rewards.id_user
	RewardID int    `json:"id_reward"` // user_rewards.id_reward
}
