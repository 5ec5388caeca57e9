package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestType separates onboarding quests from regular contribution work.
type QuestType = string

const (
	QuestTypeBeginner QuestType = "Beginner"
	QuestTypeAdvanced QuestType = "Advanced"
)

// QuestDifficulty grades a quest.
type QuestDifficulty = string

const (
	DifficultyEasy   QuestDifficulty = "Easy"
	DifficultyMedium QuestDifficulty = "Medium"
	DifficultyHard   QuestDifficulty = "Hard"
)

// Quest is a contribution task from the catalog.
type Quest struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title             string    `gorm:"size:128;not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	Type              string    `gorm:"size:16;index:idx_quest_type;not null" json:"type"`
	Difficulty        string    `gorm:"size:16;not null" json:"difficulty"`
	XPReward          int64     `gorm:"column:xp_reward;default:0" json:"xp_reward"`
	ProficiencyReward int       `gorm:"default:0" json:"proficiency_reward"`
	Role              string    `gorm:"size:64" json:"role,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TakenQuest links a user to a quest. A non-null Submission marks the quest
// as completed by that user.
type TakenQuest struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64          `gorm:"uniqueIndex:idx_taken_user_quest;not null" json:"user_id"`
	QuestID     int64          `gorm:"uniqueIndex:idx_taken_user_quest;not null" json:"quest_id"`
	Submission  datatypes.JSON `json:"submission"` // ["uploads/q1/a.png", ...]
	SubmittedAt *time.Time     `json:"submitted_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Completed reports whether the quest has a submission.
func (tq *TakenQuest) Completed() bool {
	return len(tq.Submission) > 0 && string(tq.Submission) != "null"
}
