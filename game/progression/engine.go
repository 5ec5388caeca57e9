// Package progression wires the level, ledger, achievement, leaderboard and
// frame components together and is the intake for progression events.
package progression

import (
	"context"
	"errors"

	"github.com/Regyyyy/gamify-oss-app-sub000/audit"
	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/achievement"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/badge"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/frame"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/leaderboard"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/level"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/quest"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/xp"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
)

// Deps are the collaborators an Engine is built from. Audit may be nil.
type Deps struct {
	Store  *store.Store
	Cache  cache.Cache
	Audit  *audit.Service
	Hooks  *hook.HookCenter
	Config config.ProgressionConfig
	Logger *zap.Logger
}

// Engine owns one instance of every progression component.
type Engine struct {
	Store  *store.Store
	Ledger *xp.Ledger
	Frames *frame.Service
	Awards *achievement.Service
	Board  *leaderboard.Service
	Quests *quest.Service
	Badges *badge.Service

	hooks  *hook.HookCenter
	logger *zap.Logger
}

// New builds the components and registers the engine's own hooks.
func New(d Deps) *Engine {
	if d.Hooks == nil {
		d.Hooks = hook.NewHookCenter(d.Logger)
	}
	e := &Engine{Store: d.Store, hooks: d.Hooks, logger: d.Logger}
	e.Ledger = xp.NewLedger(d.Store, d.Audit, d.Hooks, d.Logger)
	e.Frames = frame.NewService(d.Store, d.Hooks, d.Logger)
	e.Awards = achievement.NewService(d.Store, e.Ledger, e.Frames, d.Hooks, d.Logger)
	e.Board = leaderboard.NewService(d.Store, d.Cache, e.Awards, d.Config, d.Logger)
	e.Quests = quest.NewService(d.Store, e.Ledger, e, d.Hooks, d.Logger)
	e.Badges = badge.NewService(d.Store, d.Logger)
	e.registerHooks()
	return e
}

// Hooks exposes the hook center so other packages can observe progression
// events.
func (e *Engine) Hooks() *hook.HookCenter { return e.hooks }

// OnQuestCompleted runs the quest-triggered achievement rules.
func (e *Engine) OnQuestCompleted(ctx context.Context, userID, questID int64) ([]int64, error) {
	return e.Awards.OnQuestCompleted(ctx, userID, questID)
}

// OnClaimRequested claims a completed award for the user.
func (e *Engine) OnClaimRequested(ctx context.Context, userID, achievementID int64) (*achievement.ClaimResult, error) {
	return e.Awards.Claim(ctx, userID, achievementID)
}

// OnLeaderboardCheckRequested ranks the user and grants any podium awards.
func (e *Engine) OnLeaderboardCheckRequested(ctx context.Context, userID int64) ([]int64, error) {
	return e.Board.Evaluate(ctx, userID)
}

// GrantXP is the admin adjustment path into the ledger.
func (e *Engine) GrantXP(ctx context.Context, userID, amount int64, actorID int64) (*xp.Result, error) {
	return e.Ledger.GrantWithMeta(ctx, userID, amount, xp.SourceAdminAdjustment, map[string]int64{"actor_id": actorID})
}

func (e *Engine) registerHooks() {
	e.hooks.Register(hook.AfterXPGranted, 10, "leaderboard_invalidate",
		func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
			e.Board.Invalidate(ctx)
			return data, nil
		})
	e.hooks.Register(hook.AfterXPGranted, 20, "leaderboard_check",
		func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
			res, ok := data.(xp.Result)
			if !ok {
				return data, nil
			}
			_, err := e.Board.Evaluate(ctx, res.UserID)
			return data, err
		})
	e.hooks.Register(hook.OnLevelUp, 10, "log_level_up",
		func(_ context.Context, _ string, data interface{}) (interface{}, error) {
			if res, ok := data.(xp.Result); ok {
				e.logger.Info("level up",
					zap.Int64("user_id", res.UserID),
					zap.Int("from", res.PreviousLevel),
					zap.Int("to", res.NewLevel))
			}
			return data, nil
		})
}

// Profile is the progression view of one user.
type Profile struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Progress    level.Progress `json:"progress"`
	Rank        int            `json:"rank,omitempty"`
	ActiveFrame int64          `json:"active_frame"`
	Badges      []model.Badge  `json:"badges"`
}

// Profile assembles the user's XP, level progress, rank, frame and badges.
// Rank is zero for unranked users.
func (e *Engine) Profile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := e.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		Progress: level.ProgressFor(u.XP),
	}
	if p.Rank, err = e.Board.RankOf(ctx, userID); err != nil && !errors.Is(err, leaderboard.ErrUnranked) {
		return nil, err
	}
	if p.ActiveFrame, err = e.Frames.Active(ctx, userID); err != nil {
		return nil, err
	}
	if p.Badges, err = e.Badges.List(ctx, userID); err != nil {
		return nil, err
	}
	if p.Badges == nil {
		p.Badges = []model.Badge{}
	}
	return p, nil
}
