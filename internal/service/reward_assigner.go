package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/magehall/mission-tracker/internal/repository"
)

// RewardAssigner advances a user's reward tier after a level-up. It
// runs outside the XP transaction on purpose: a completed level-up is
// already committed when the assigner runs, and a failure here is
// reported to the caller as reward_updated=false instead of
// unwinding the experience gain.
type RewardAssigner struct {
	rewards     *repository.RewardRepo
	maxRewardID int
}

// NewRewardAssigner builds a RewardAssigner. maxRewardID caps the
// highest tier that can ever be assigned.
func NewRewardAssigner(rewards *repository.RewardRepo, maxRewardID int) *RewardAssigner {
	return &RewardAssigner{rewards: rewards, maxRewardID: maxRewardID}
}

// AdvanceTier looks up the best tier the new level unlocks and
// assigns it when it beats the tier the user currently holds.
// Returns whether the association changed. Tiers only ever move up;
// a level that unlocks nothing new leaves the association untouched.
func (a *RewardAssigner) AdvanceTier(ctx context.Context, userID string, newLevel int) (bool, error) {
	unlocked, err := a.rewards.HighestUnlocked(ctx, newLevel, a.maxRewardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No tier exists at or below this level; nothing to assign.
			return false, nil
		}
		return false, err
	}

	current, err := a.rewards.GetUserReward(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if current != nil && unlocked.ID <= current.RewardID {
		return false, nil
	}

	if err := a.rewards.UpsertUserReward(ctx, userID, unlocked.ID); err != nil {
		return false, err
	}
	return true, nil
}

// AdvanceTierBestEffort wraps AdvanceTier for the completion path:
// errors are logged and swallowed so the already-committed level-up
// is never reported as a failure.
func (a *RewardAssigner) AdvanceTierBestEffort(ctx context.Context, userID string, newLevel int) bool {
	changed, err := a.AdvanceTier(ctx, userID, newLevel)
	if err != nil {
		log.Printf("reward-assigner: tier advance failed for user %s at level %d: %v", userID, newLevel, err)
		return false
	}
	return changed
}
