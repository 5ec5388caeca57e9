// Package xp is the single entry point for changing a user's XP.
package xp

import (
	"context"
	"fmt"

	"github.com/Regyyyy/gamify-oss-app-sub000/audit"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/level"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
)

// Grant sources. The ledger treats them identically; they only label the
// audit trail.
const (
	SourceQuestDirect        = "quest_direct"
	SourceAchievementClaimed = "achievement_claimed"
	SourceAdminAdjustment    = "admin_adjustment"
)

// Result is the outcome of one applied grant.
type Result struct {
	UserID        int64  `json:"user_id"`
	Source        string `json:"source"`
	Amount        int64  `json:"amount"`
	PreviousXP    int64  `json:"previous_xp"`
	NewXP         int64  `json:"new_xp"`
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	LeveledUp     bool   `json:"leveled_up"`

	meta interface{}
}

// Ledger applies XP deltas and keeps the stored level in step with XP.
type Ledger struct {
	store  *store.Store
	audit  *audit.Service
	hooks  *hook.HookCenter
	logger *zap.Logger
}

// NewLedger creates a Ledger. auditSvc and hooks may be nil.
func NewLedger(st *store.Store, auditSvc *audit.Service, hooks *hook.HookCenter, logger *zap.Logger) *Ledger {
	return &Ledger{store: st, audit: auditSvc, hooks: hooks, logger: logger}
}

// Apply adds amount to the user's XP inside the caller's transaction tx and
// raises the stored level if the new XP crosses a threshold. The level is
// never lowered. Callers that own the transaction must pass the returned
// Result to Record once it has committed.
func (l *Ledger) Apply(ctx context.Context, tx *store.Store, userID, amount int64, source string) (*Result, error) {
	u, err := tx.GetUserForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("xp: load user %d: %w", userID, err)
	}
	if err := tx.AddXP(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("xp: add: %w", err)
	}
	after, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("xp: reload user %d: %w", userID, err)
	}

	// The stored xp before the increment is after.XP - amount even when
	// another writer got in between the locked read and the update.
	res := &Result{
		UserID:        userID,
		Source:        source,
		Amount:        amount,
		PreviousXP:    after.XP - amount,
		NewXP:         after.XP,
		PreviousLevel: u.Level,
	}
	if lv := level.For(after.XP); lv > after.Level {
		if err := tx.UpdateUser(ctx, userID, map[string]interface{}{"level": lv}); err != nil {
			return nil, fmt.Errorf("xp: update level: %w", err)
		}
		res.NewLevel = lv
	} else {
		res.NewLevel = after.Level
	}
	res.LeveledUp = res.NewLevel > res.PreviousLevel
	return res, nil
}

// Grant applies one XP grant in its own transaction and records it.
func (l *Ledger) Grant(ctx context.Context, userID, amount int64, source string) (*Result, error) {
	return l.GrantWithMeta(ctx, userID, amount, source, nil)
}

// GrantWithMeta is Grant with extra context stored on the ledger entry.
func (l *Ledger) GrantWithMeta(ctx context.Context, userID, amount int64, source string, meta interface{}) (*Result, error) {
	var res *Result
	err := l.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		res, err = l.Apply(ctx, tx, userID, amount, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.meta = meta
	l.Record(ctx, res)
	return res, nil
}

// WithMeta attaches ledger metadata to a Result produced by Apply.
func (r *Result) WithMeta(meta interface{}) *Result {
	r.meta = meta
	return r
}

// Record writes the ledger entry for a committed grant and fires the
// after-grant hooks.
func (l *Ledger) Record(ctx context.Context, res *Result) {
	if res == nil {
		return
	}
	l.logger.Info("xp granted",
		zap.Int64("user_id", res.UserID),
		zap.String("source", res.Source),
		zap.Int64("amount", res.Amount),
		zap.Int64("xp", res.NewXP),
		zap.Int("level", res.NewLevel))

	if l.audit != nil {
		l.audit.Log(audit.Entry{
			TraceID:       audit.TraceID(ctx),
			UserID:        res.UserID,
			Source:        res.Source,
			Amount:        res.Amount,
			PreviousXP:    res.PreviousXP,
			NewXP:         res.NewXP,
			PreviousLevel: res.PreviousLevel,
			NewLevel:      res.NewLevel,
			Meta:          res.meta,
		})
	}
	if l.hooks == nil {
		return
	}
	_, _ = l.hooks.Trigger(ctx, hook.AfterXPGranted, *res)
	if res.LeveledUp {
		_, _ = l.hooks.Trigger(ctx, hook.OnLevelUp, *res)
	}
}
