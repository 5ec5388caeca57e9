package model

import "time"

// Badge is an admin-granted recognition.
type Badge struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:64;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImagePath   string `gorm:"size:255" json:"image_path"`
}

type UserBadge struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_user_badge;not null" json:"user_id"`
	BadgeID   int64     `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	GrantedBy *int64    `json:"granted_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
