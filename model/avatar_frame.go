package model

import "time"

// DefaultFrameID is implicitly unlocked for every user and shown when no
// frame is active.
const DefaultFrameID int64 = 1

// AvatarFrame is a cosmetic profile decoration.
type AvatarFrame struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:64;not null" json:"name"`
	ImagePath string `gorm:"size:255" json:"image_path"`
}

// UserAvatarFrame records that a user unlocked a frame. At most one row per
// user has IsUsed set.
type UserAvatarFrame struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_user_frame;not null" json:"user_id"`
	FrameID   int64     `gorm:"uniqueIndex:idx_user_frame;not null" json:"frame_id"`
	IsUsed    bool      `gorm:"default:false;not null" json:"is_used"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
