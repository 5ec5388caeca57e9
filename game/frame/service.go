// Package frame unlocks avatar frames and switches the one a user wears.
package frame

import (
	"context"
	"errors"
	"fmt"

	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
)

// ErrNotUnlocked is returned when activating a frame the user does not own.
var ErrNotUnlocked = errors.New("frame: not unlocked")

// Unlocked is the payload of hook.OnFrameUnlocked.
type Unlocked struct {
	UserID  int64 `json:"user_id"`
	FrameID int64 `json:"frame_id"`
}

// Owned is one frame in a user's collection.
type Owned struct {
	model.AvatarFrame
	Active bool `json:"active"`
}

// Service manages per-user frame rows.
type Service struct {
	store  *store.Store
	hooks  *hook.HookCenter
	logger *zap.Logger
}

// NewService creates a frame Service. hooks may be nil.
func NewService(st *store.Store, hooks *hook.HookCenter, logger *zap.Logger) *Service {
	return &Service{store: st, hooks: hooks, logger: logger}
}

// Unlock gives the user frameID inside tx without equipping it. It reports
// whether the frame was newly unlocked. The default frame is owned by
// everyone and never gets a row.
func (s *Service) Unlock(ctx context.Context, tx *store.Store, userID, frameID int64) (bool, error) {
	if frameID == model.DefaultFrameID {
		return false, nil
	}
	if _, err := tx.GetAvatarFrame(ctx, frameID); err != nil {
		return false, fmt.Errorf("frame: lookup %d: %w", frameID, err)
	}
	inserted, err := tx.InsertUserAvatarFrame(ctx, userID, frameID)
	if err != nil {
		return false, fmt.Errorf("frame: unlock: %w", err)
	}
	return inserted, nil
}

// NotifyUnlocked fires the unlock hook once the unlocking transaction has
// committed.
func (s *Service) NotifyUnlocked(ctx context.Context, userID, frameID int64) {
	s.logger.Info("frame unlocked", zap.Int64("user_id", userID), zap.Int64("frame_id", frameID))
	if s.hooks != nil {
		_, _ = s.hooks.Trigger(ctx, hook.OnFrameUnlocked, Unlocked{UserID: userID, FrameID: frameID})
	}
}

// SetActive equips frameID. Choosing the default frame clears every active
// flag. Any other frame must be unlocked first. The clear and the set run
// in one transaction so readers never observe two active frames.
func (s *Service) SetActive(ctx context.Context, userID, frameID int64) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if frameID == model.DefaultFrameID {
			return tx.ClearActiveFrames(ctx, userID)
		}
		if _, err := tx.GetUserAvatarFrame(ctx, userID, frameID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotUnlocked
			}
			return err
		}
		if err := tx.ClearActiveFrames(ctx, userID); err != nil {
			return err
		}
		ok, err := tx.SetActiveFrame(ctx, userID, frameID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotUnlocked
		}
		return nil
	})
}

// Active returns the frame the user currently wears.
func (s *Service) Active(ctx context.Context, userID int64) (int64, error) {
	uf, err := s.store.GetActiveUserFrame(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultFrameID, nil
	}
	if err != nil {
		return 0, err
	}
	return uf.FrameID, nil
}

// List returns the default frame followed by every frame the user unlocked.
func (s *Service) List(ctx context.Context, userID int64) ([]Owned, error) {
	rows, err := s.store.ListUserAvatarFrames(ctx, userID)
	if err != nil {
		return nil, err
	}
	def, err := s.store.GetAvatarFrame(ctx, model.DefaultFrameID)
	if err != nil {
		return nil, fmt.Errorf("frame: default frame missing: %w", err)
	}
	anyActive := false
	out := make([]Owned, 0, len(rows)+1)
	out = append(out, Owned{AvatarFrame: *def})
	for _, r := range rows {
		f, err := s.store.GetAvatarFrame(ctx, r.FrameID)
		if err != nil {
			s.logger.Warn("unlocked frame missing from catalog",
				zap.Int64("user_id", userID), zap.Int64("frame_id", r.FrameID))
			continue
		}
		anyActive = anyActive || r.IsUsed
		out = append(out, Owned{AvatarFrame: *f, Active: r.IsUsed})
	}
	out[0].Active = !anyActive
	return out, nil
}
