package model

import "time"

// AwardStatus is the lifecycle state of a UserAchievement.
type AwardStatus = string

const (
	// AwardCompleted is granted but unclaimed; no reward applied yet.
	AwardCompleted AwardStatus = "completed"
	// AwardClaimed means XP and cosmetic rewards were applied once.
	AwardClaimed AwardStatus = "claimed"
)

// Achievement is a catalog milestone bundling XP and an optional frame.
type Achievement struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"size:128;not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	XPReward      int64  `gorm:"column:xp_reward;default:0" json:"xp_reward"`
	AvatarFrameID *int64 `json:"avatar_frame_id,omitempty"`
}

// UserAchievement is the award record for one (user, achievement) pair.
type UserAchievement struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID int64      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	Status        string     `gorm:"size:16;default:completed;not null" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ClaimedAt     *time.Time `json:"claimed_at"`
}
