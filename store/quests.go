package store

import (
	"context"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func (s *Store) GetQuest(ctx context.Context, id int64) (*model.Quest, error) {
	return cached(s, catalogKey("quest", id), func() (*model.Quest, error) {
		var q model.Quest
		if err := s.with(ctx).Where("id = ?", id).First(&q).Error; err != nil {
			return nil, translate(err)
		}
		return &q, nil
	})
}

func (s *Store) ListQuests(ctx context.Context) ([]model.Quest, error) {
	var quests []model.Quest
	err := s.with(ctx).Order("id ASC").Find(&quests).Error
	return quests, err
}

func (s *Store) ListAllBeginnerQuestIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.with(ctx).Model(&model.Quest{}).
		Where("type = ?", model.QuestTypeBeginner).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ListCompletedQuestIDs returns the quests the user has a submission for.
func (s *Store) ListCompletedQuestIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := s.with(ctx).Model(&model.TakenQuest{}).
		Where("user_id = ? AND submission IS NOT NULL", userID).
		Order("quest_id ASC").
		Pluck("quest_id", &ids).Error
	return ids, err
}

func (s *Store) GetTakenQuest(ctx context.Context, userID, questID int64) (*model.TakenQuest, error) {
	var tq model.TakenQuest
	err := s.with(ctx).Where("user_id = ? AND quest_id = ?", userID, questID).First(&tq).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tq, nil
}

func (s *Store) ListTakenQuests(ctx context.Context, userID int64) ([]model.TakenQuest, error) {
	var rows []model.TakenQuest
	err := s.with(ctx).Where("user_id = ?", userID).Order("quest_id ASC").Find(&rows).Error
	return rows, err
}

// InsertTakenQuest creates the (user, quest) row unless it already exists.
// It reports whether a row was inserted.
func (s *Store) InsertTakenQuest(ctx context.Context, userID, questID int64) (bool, error) {
	res := s.with(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.TakenQuest{UserID: userID, QuestID: questID})
	return res.RowsAffected > 0, res.Error
}

// SaveFirstSubmission stores the payload only if the row has no submission
// yet, and reports whether it did. Exactly one of several concurrent first
// submissions wins.
func (s *Store) SaveFirstSubmission(ctx context.Context, userID, questID int64, payload datatypes.JSON, at time.Time) (bool, error) {
	res := s.with(ctx).Model(&model.TakenQuest{}).
		Where("user_id = ? AND quest_id = ? AND submission IS NULL", userID, questID).
		Updates(map[string]interface{}{
			"submission":   payload,
			"submitted_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// SaveSubmission overwrites the submission payload of an existing row.
func (s *Store) SaveSubmission(ctx context.Context, userID, questID int64, payload datatypes.JSON, at time.Time) error {
	return s.with(ctx).Model(&model.TakenQuest{}).
		Where("user_id = ? AND quest_id = ?", userID, questID).
		Updates(map[string]interface{}{
			"submission":   payload,
			"submitted_at": at,
		}).Error
}
