package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/xp"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
)

var (
	// ErrNotEligible is returned when the award is not in status completed
	// for the user: never granted or already claimed.
	ErrNotEligible = errors.New("achievement: not eligible for claim")
	// ErrNotFound is returned when the achievement is not in the catalog.
	ErrNotFound = store.ErrNotFound
)

// ClaimResult is the outcome of a successful claim and the payload of
// hook.OnAchievementClaimed.
type ClaimResult struct {
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	XPGranted     int64     `json:"xp_granted"`
	FrameGranted  *int64    `json:"frame_granted,omitempty"`
	XP            xp.Result `json:"xp"`
}

// Claim turns a completed award into a claimed one and applies its rewards:
// the frame unlock (not equipped) and the XP grant. The status flip and both
// rewards commit together or not at all. The flip only matches a row still
// in status completed, so of two concurrent claims exactly one succeeds.
func (s *Service) Claim(ctx context.Context, userID, achievementID int64) (*ClaimResult, error) {
	ach, err := s.store.GetAchievement(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	out := &ClaimResult{UserID: userID, AchievementID: achievementID, XPGranted: ach.XPReward}
	var xpRes *xp.Result
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		flipped, err := tx.UpdateUserAchievementStatus(ctx, userID, achievementID, model.AwardCompleted, model.AwardClaimed)
		if err != nil {
			return fmt.Errorf("achievement: flip status: %w", err)
		}
		if !flipped {
			return ErrNotEligible
		}

		if ach.AvatarFrameID != nil {
			unlocked, err := s.frames.Unlock(ctx, tx, userID, *ach.AvatarFrameID)
			if err != nil {
				return err
			}
			if unlocked {
				frameID := *ach.AvatarFrameID
				out.FrameGranted = &frameID
			}
		}

		xpRes, err = s.ledger.Apply(ctx, tx, userID, ach.XPReward, xp.SourceAchievementClaimed)
		return err
	})
	if err != nil {
		return nil, err
	}

	out.XP = *xpRes
	s.logger.Info("achievement claimed",
		zap.Int64("user_id", userID),
		zap.Int64("achievement_id", achievementID),
		zap.Int64("xp", ach.XPReward))

	s.ledger.Record(ctx, xpRes.WithMeta(map[string]int64{"achievement_id": achievementID}))
	if out.FrameGranted != nil {
		s.frames.NotifyUnlocked(ctx, userID, *out.FrameGranted)
	}
	if s.hooks != nil {
		_, _ = s.hooks.Trigger(ctx, hook.OnAchievementClaimed, *out)
	}
	return out, nil
}

// Award is one catalog achievement with the user's award state. Status is
// empty when the achievement has not been granted.
type Award struct {
	model.Achievement
	Status    string     `json:"status"`
	GrantedAt *time.Time `json:"granted_at,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

// List returns the whole catalog annotated with the user's award rows.
func (s *Service) List(ctx context.Context, userID int64) ([]Award, error) {
	catalog, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.UserAchievement, len(rows))
	for _, r := range rows {
		byID[r.AchievementID] = r
	}
	out := make([]Award, 0, len(catalog))
	for _, a := range catalog {
		aw := Award{Achievement: a}
		if r, ok := byID[a.ID]; ok {
			created := r.CreatedAt
			aw.Status = r.Status
			aw.GrantedAt = &created
			aw.ClaimedAt = r.ClaimedAt
		}
		out = append(out, aw)
	}
	return out, nil
}
