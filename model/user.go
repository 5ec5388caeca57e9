package model

import "time"

// Role is the platform role of a user.
type Role = string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is a platform member with accumulated progression.
// Level is derived from XP and is only written by the XP ledger.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Name         string    `gorm:"size:64" json:"name"`
	PasswordHash string    `gorm:"size:64;not null" json:"-"`
	Role         string    `gorm:"size:16;default:member;not null" json:"role"`
	XP           int64     `gorm:"column:xp;default:0;not null" json:"xp"`
	Level        int       `gorm:"default:1;not null" json:"level"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
