package repository

import (
	"context"
	"database/sql"

	"github.com/magehall/mission-tracker/internal/model"
)

// RewardRepo provides access to reward tiers and the user-reward
// association. Tier rows are reference data; the only mutation is the
// upgrade of a user's held tier on level-up, and that upgrade is
// monotonic: a user's id_reward never decreases.
type RewardRepo struct {
	db *sql.DB
}

// NewRewardRepo returns a new RewardRepo bound to the given database.
func NewRewardRepo(db *sql.DB) *RewardRepo { return &RewardRepo{db: db} }

// HighestUnlocked returns the reward tier with the highest
// unlock_level that the given level satisfies, never exceeding
// maxRewardID. Returns sql.ErrNoRows when no tier is unlocked at the
// level, which only happens with an unpopulated rewards table.
func (r *RewardRepo) HighestUnlocked(ctx context.Context, level, maxRewardID int) (*model.Reward, error) {
	const q = `SELECT id_reward, unlock_level, wizard_title, image_url
	           FROM rewards
	           WHERE unlock_level <= ? AND id_reward <= ?
	           ORDER BY unlock_level DESC, id_reward DESC
	           LIMIT 1`
	var rw model.Reward
	err := r.db.QueryRowContext(ctx, q, level, maxRewardID).Scan(&rw.ID, &rw.UnlockLevel, &rw.WizardTitle, &rw.ImageURL)
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// GetUserReward returns the tier a user currently holds, or
// sql.ErrNoRows when the user has never been assigned one.
func (r *RewardRepo) GetUserReward(ctx context.Context, userID string) (*model.UserReward, error) {
	const q = `SELECT id_user, id_reward FROM user_rewards WHERE id_user = ?`
	var ur model.UserReward
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&ur.UserID, &ur.RewardID); err != nil {
		return nil, err
	}
	return &ur, nil
}

// GetUserRewardDetail returns the full tier row a user currently
// holds, joining the cosmetic payload for display.
func (r *RewardRepo) GetUserRewardDetail(ctx context.Context, userID string) (*model.Reward, error) {
	const q = `SELECT rw.id_reward, rw.unlock_level, rw.wizard_title, rw.image_url
	           FROM user_rewards ur
	           JOIN rewards rw ON rw.id_reward = ur.id_reward
	           WHERE ur.id_user = ?`
	var rw model.Reward
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&rw.ID, &rw.UnlockLevel, &rw.WizardTitle, &rw.ImageURL)
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// UpsertUserReward assigns rewardID to the user, inserting the
// association on first assignment. The WHERE-less upsert is guarded
// in SQL so a concurrent or repeated call can only ever raise the
// held tier, upholding the monotonic invariant without a
// read-modify-write round trip.
func (r *RewardRepo) UpsertUserReward(ctx context.Context, userID string, rewardID int) error {
	const q = `INSERT INTO user_rewards (id_user, id_reward) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE id_reward = GREATEST(id_reward, VALUES(id_reward))`
	_, err := r.db.ExecContext(ctx, q, userID, rewardID)
	return err
}
