package store

import (
	"context"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAvatarFrame(ctx context.Context, id int64) (*model.AvatarFrame, error) {
	return cached(s, catalogKey("frame", id), func() (*model.AvatarFrame, error) {
		var f model.AvatarFrame
		if err := s.with(ctx).Where("id = ?", id).First(&f).Error; err != nil {
			return nil, translate(err)
		}
		return &f, nil
	})
}

func (s *Store) GetUserAvatarFrame(ctx context.Context, userID, frameID int64) (*model.UserAvatarFrame, error) {
	var uf model.UserAvatarFrame
	err := s.with(ctx).Where("user_id = ? AND frame_id = ?", userID, frameID).First(&uf).Error
	if err != nil {
		return nil, translate(err)
	}
	return &uf, nil
}

// GetActiveUserFrame returns the user's row with is_used set, or
// ErrNotFound when the default frame is in effect.
func (s *Store) GetActiveUserFrame(ctx context.Context, userID int64) (*model.UserAvatarFrame, error) {
	var uf model.UserAvatarFrame
	err := s.with(ctx).Where("user_id = ? AND is_used = ?", userID, true).First(&uf).Error
	if err != nil {
		return nil, translate(err)
	}
	return &uf, nil
}

func (s *Store) ListUserAvatarFrames(ctx context.Context, userID int64) ([]model.UserAvatarFrame, error) {
	var rows []model.UserAvatarFrame
	err := s.with(ctx).Where("user_id = ?", userID).Order("frame_id ASC").Find(&rows).Error
	return rows, err
}

// InsertUserAvatarFrame unlocks a frame for a user without equipping it.
// It reports whether a row was inserted.
func (s *Store) InsertUserAvatarFrame(ctx context.Context, userID, frameID int64) (bool, error) {
	res := s.with(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserAvatarFrame{UserID: userID, FrameID: frameID, IsUsed: false})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) ClearActiveFrames(ctx context.Context, userID int64) error {
	return s.with(ctx).Model(&model.UserAvatarFrame{}).
		Where("user_id = ? AND is_used = ?", userID, true).
		Update("is_used", false).Error
}

// SetActiveFrame marks one unlocked frame as used. It reports whether the
// row existed.
func (s *Store) SetActiveFrame(ctx context.Context, userID, frameID int64) (bool, error) {
	res := s.with(ctx).Model(&model.UserAvatarFrame{}).
		Where("user_id = ? AND frame_id = ?", userID, frameID).
		Update("is_used", true)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) GetBadge(ctx context.Context, id int64) (*model.Badge, error) {
	return cached(s, catalogKey("badge", id), func() (*model.Badge, error) {
		var b model.Badge
		if err := s.with(ctx).Where("id = ?", id).First(&b).Error; err != nil {
			return nil, translate(err)
		}
		return &b, nil
	})
}

// InsertUserBadge reports whether the badge was newly granted.
func (s *Store) InsertUserBadge(ctx context.Context, userID, badgeID int64, grantedBy *int64) (bool, error) {
	res := s.with(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserBadge{UserID: userID, BadgeID: badgeID, GrantedBy: grantedBy})
	return res.RowsAffected > 0, res.Error
}

// ListUserBadges returns the badges a user holds, oldest grant first.
func (s *Store) ListUserBadges(ctx context.Context, userID int64) ([]model.Badge, error) {
	var badges []model.Badge
	err := s.with(ctx).Model(&model.Badge{}).
		Joins("JOIN user_badges ON user_badges.badge_id = badges.id").
		Where("user_badges.user_id = ?", userID).
		Order("user_badges.id ASC").
		Find(&badges).Error
	return badges, err
}
