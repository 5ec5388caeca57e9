package model

import (
	"time"

	"gorm.io/datatypes"
)

// XPLedgerEntry records one applied XP grant.
type XPLedgerEntry struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID       string         `gorm:"index:idx_ledger_trace;size:36" json:"trace_id"`
	UserID        int64          `gorm:"index:idx_ledger_user;not null" json:"user_id"`
	Source        string         `gorm:"size:32;not null" json:"source"`
	Amount        int64          `gorm:"not null" json:"amount"`
	PreviousXP    int64          `gorm:"column:previous_xp" json:"previous_xp"`
	NewXP         int64          `gorm:"column:new_xp" json:"new_xp"`
	PreviousLevel int            `json:"previous_level"`
	NewLevel      int            `json:"new_level"`
	Meta          datatypes.JSON `json:"meta"`
	CreatedAt     time.Time      `gorm:"index:idx_ledger_created;autoCreateTime:milli" json:"created_at"`
}
