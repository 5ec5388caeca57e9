package store

import (
	"context"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAchievement(ctx context.Context, id int64) (*model.Achievement, error) {
	return cached(s, catalogKey("achievement", id), func() (*model.Achievement, error) {
		var a model.Achievement
		if err := s.with(ctx).Where("id = ?", id).First(&a).Error; err != nil {
			return nil, translate(err)
		}
		return &a, nil
	})
}

func (s *Store) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	var rows []model.Achievement
	err := s.with(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *Store) GetUserAchievement(ctx context.Context, userID, achievementID int64) (*model.UserAchievement, error) {
	var ua model.UserAchievement
	err := s.with(ctx).Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&ua).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ua, nil
}

func (s *Store) ListUserAchievements(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	var rows []model.UserAchievement
	err := s.with(ctx).Where("user_id = ?", userID).Order("achievement_id ASC").Find(&rows).Error
	return rows, err
}

// InsertUserAchievement creates the award row unless one exists for the
// pair. The unique index on (user_id, achievement_id) makes the check and
// the insert one statement. It reports whether a row was inserted.
func (s *Store) InsertUserAchievement(ctx context.Context, userID, achievementID int64, status string) (bool, error) {
	res := s.with(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserAchievement{UserID: userID, AchievementID: achievementID, Status: status})
	return res.RowsAffected > 0, res.Error
}

// UpdateUserAchievementStatus moves an award row from one status to
// another. It only succeeds if the row is still in status from, and
// reports whether it did.
func (s *Store) UpdateUserAchievementStatus(ctx context.Context, userID, achievementID int64, from, to string) (bool, error) {
	fields := map[string]interface{}{"status": to}
	if to == model.AwardClaimed {
		fields["claimed_at"] = time.Now()
	}
	res := s.with(ctx).Model(&model.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ? AND status = ?", userID, achievementID, from).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}
