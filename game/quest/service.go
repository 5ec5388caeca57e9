// Package quest records quest takes and submissions and reports first
// completions to the achievement rules.
package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/xp"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ErrEmptySubmission is returned when a submission carries no images.
var ErrEmptySubmission = errors.New("quest: submission has no images")

// Rules is told about every first completion of a quest.
type Rules interface {
	OnQuestCompleted(ctx context.Context, userID, questID int64) ([]int64, error)
}

// Completion is the outcome of a submission and the payload of
// hook.OnQuestCompleted.
type Completion struct {
	UserID       int64      `json:"user_id"`
	QuestID      int64      `json:"quest_id"`
	First        bool       `json:"first"`
	XP           *xp.Result `json:"xp,omitempty"`
	Achievements []int64    `json:"achievements,omitempty"`
}

// Progress is one catalog quest with the user's state.
type Progress struct {
	model.Quest
	Taken       bool       `json:"taken"`
	Completed   bool       `json:"completed"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// Service handles quest takes and submissions.
type Service struct {
	store  *store.Store
	ledger *xp.Ledger
	rules  Rules
	hooks  *hook.HookCenter
	logger *zap.Logger
}

// NewService creates a quest Service. rules and hooks may be nil.
func NewService(st *store.Store, ledger *xp.Ledger, rules Rules, hooks *hook.HookCenter, logger *zap.Logger) *Service {
	return &Service{store: st, ledger: ledger, rules: rules, hooks: hooks, logger: logger}
}

// Take links the user to a quest. It reports whether the link is new.
func (svc *Service) Take(ctx context.Context, userID, questID int64) (bool, error) {
	if _, err := svc.store.GetQuest(ctx, questID); err != nil {
		return false, err
	}
	return svc.store.InsertTakenQuest(ctx, userID, questID)
}

// Submit stores the image references proving completion. The first
// submission grants the quest's XP and runs the achievement rules; later
// submissions only replace the stored images.
func (svc *Service) Submit(ctx context.Context, userID, questID int64, images []string) (*Completion, error) {
	if len(images) == 0 {
		return nil, ErrEmptySubmission
	}
	q, err := svc.store.GetQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}

	out := &Completion{UserID: userID, QuestID: questID}
	err = svc.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.InsertTakenQuest(ctx, userID, questID); err != nil {
			return fmt.Errorf("quest: take: %w", err)
		}
		now := time.Now()
		first, err := tx.SaveFirstSubmission(ctx, userID, questID, datatypes.JSON(payload), now)
		if err != nil {
			return fmt.Errorf("quest: submit: %w", err)
		}
		if !first {
			return tx.SaveSubmission(ctx, userID, questID, datatypes.JSON(payload), now)
		}
		out.First = true
		out.XP, err = svc.ledger.Apply(ctx, tx, userID, q.XPReward, xp.SourceQuestDirect)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !out.First {
		return out, nil
	}

	svc.logger.Info("quest completed",
		zap.Int64("user_id", userID),
		zap.Int64("quest_id", questID),
		zap.Int64("xp", q.XPReward))
	svc.ledger.Record(ctx, out.XP.WithMeta(map[string]int64{"quest_id": questID}))

	if svc.rules != nil {
		granted, err := svc.rules.OnQuestCompleted(ctx, userID, questID)
		if err != nil {
			svc.logger.Error("achievement rules failed after quest completion",
				zap.Int64("user_id", userID), zap.Int64("quest_id", questID), zap.Error(err))
		}
		out.Achievements = granted
	}
	if svc.hooks != nil {
		_, _ = svc.hooks.Trigger(ctx, hook.OnQuestCompleted, *out)
	}
	return out, nil
}

// List returns the catalog annotated with the user's takes and completions.
func (svc *Service) List(ctx context.Context, userID int64) ([]Progress, error) {
	quests, err := svc.store.ListQuests(ctx)
	if err != nil {
		return nil, err
	}
	taken, err := svc.store.ListTakenQuests(ctx, userID)
	if err != nil {
		return nil, err
	}
	byQuest := make(map[int64]model.TakenQuest, len(taken))
	for _, tq := range taken {
		byQuest[tq.QuestID] = tq
	}
	out := make([]Progress, 0, len(quests))
	for _, q := range quests {
		p := Progress{Quest: q}
		if tq, ok := byQuest[q.ID]; ok {
			p.Taken = true
			p.Completed = tq.Completed()
			p.SubmittedAt = tq.SubmittedAt
		}
		out = append(out, p)
	}
	return out, nil
}
