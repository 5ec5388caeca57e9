// Package achievement detects achievement grants and processes claims.
//
// Granting only records a dormant award row in status completed. Rewards are
// applied once, when the user claims the award.
package achievement

import (
	"context"
	"errors"
	"fmt"

	"github.com/Regyyyy/gamify-oss-app-sub000/game/frame"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/xp"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
)

// Fixed achievement ids from the reference catalog.
const (
	AllBeginnerQuests      int64 = 5
	FirstHardAdvancedQuest int64 = 6
	PodiumBronze           int64 = 7
	PodiumSilver           int64 = 8
	PodiumGold             int64 = 9
)

// PodiumPositions is the deepest leaderboard position that earns an award.
const PodiumPositions = 3

// questAchievements maps a quest to the achievement its completion grants.
var questAchievements = map[int64]int64{
	1: 1,
	2: 2,
	3: 3,
	4: 4,
}

var podiumAchievements = map[int]int64{
	3: PodiumBronze,
	2: PodiumSilver,
	1: PodiumGold,
}

// Rule names, used in logs and hook payloads.
const (
	RuleQuestMapping      = "quest_mapping"
	RuleAllBeginner       = "all_beginner_quests"
	RuleFirstHardAdvanced = "first_hard_advanced_quest"
	RuleLeaderboard       = "leaderboard_position"
)

// Granted is the payload of hook.OnAchievementGranted.
type Granted struct {
	UserID        int64  `json:"user_id"`
	AchievementID int64  `json:"achievement_id"`
	Rule          string `json:"rule"`
}

// Service evaluates achievement rules and claims.
type Service struct {
	store  *store.Store
	ledger *xp.Ledger
	frames *frame.Service
	hooks  *hook.HookCenter
	logger *zap.Logger
}

// NewService creates an achievement Service. hooks may be nil.
func NewService(st *store.Store, ledger *xp.Ledger, frames *frame.Service, hooks *hook.HookCenter, logger *zap.Logger) *Service {
	return &Service{store: st, ledger: ledger, frames: frames, hooks: hooks, logger: logger}
}

// Grant records a completed award for the pair unless one exists. A
// missing user or achievement is not an error: the grant simply does not
// apply. It reports whether a row was inserted.
func (s *Service) Grant(ctx context.Context, userID, achievementID int64, rule string) (bool, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return false, ignoreMissing(err)
	}
	if _, err := s.store.GetAchievement(ctx, achievementID); err != nil {
		return false, ignoreMissing(err)
	}
	inserted, err := s.store.InsertUserAchievement(ctx, userID, achievementID, model.AwardCompleted)
	if err != nil {
		return false, fmt.Errorf("achievement: grant %d to user %d: %w", achievementID, userID, err)
	}
	if !inserted {
		return false, nil
	}
	s.logger.Info("achievement granted",
		zap.Int64("user_id", userID),
		zap.Int64("achievement_id", achievementID),
		zap.String("rule", rule))
	if s.hooks != nil {
		_, _ = s.hooks.Trigger(ctx, hook.OnAchievementGranted, Granted{UserID: userID, AchievementID: achievementID, Rule: rule})
	}
	return true, nil
}

// OnQuestCompleted runs every quest-triggered rule for a completion and
// returns the ids of newly granted achievements.
func (s *Service) OnQuestCompleted(ctx context.Context, userID, questID int64) ([]int64, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, ignoreMissing(err)
	}
	q, err := s.store.GetQuest(ctx, questID)
	if err != nil {
		return nil, ignoreMissing(err)
	}

	var granted []int64
	try := func(achievementID int64, rule string) error {
		ok, err := s.Grant(ctx, userID, achievementID, rule)
		if ok {
			granted = append(granted, achievementID)
		}
		return err
	}

	if achID, ok := questAchievements[q.ID]; ok {
		if err := try(achID, RuleQuestMapping); err != nil {
			return granted, err
		}
	}
	if q.Type == model.QuestTypeAdvanced && q.Difficulty == model.DifficultyHard {
		if err := try(FirstHardAdvancedQuest, RuleFirstHardAdvanced); err != nil {
			return granted, err
		}
	}
	done, err := s.completedAllBeginnerQuests(ctx, userID)
	if err != nil {
		return granted, err
	}
	if done {
		if err := try(AllBeginnerQuests, RuleAllBeginner); err != nil {
			return granted, err
		}
	}
	return granted, nil
}

// completedAllBeginnerQuests recomputes both sets from the store. A catalog
// without beginner quests never satisfies the rule.
func (s *Service) completedAllBeginnerQuests(ctx context.Context, userID int64) (bool, error) {
	beginner, err := s.store.ListAllBeginnerQuestIDs(ctx)
	if err != nil {
		return false, fmt.Errorf("achievement: list beginner quests: %w", err)
	}
	if len(beginner) == 0 {
		return false, nil
	}
	completed, err := s.store.ListCompletedQuestIDs(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("achievement: list completed quests: %w", err)
	}
	have := make(map[int64]struct{}, len(completed))
	for _, id := range completed {
		have[id] = struct{}{}
	}
	for _, id := range beginner {
		if _, ok := have[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// GrantPodium grants the leaderboard awards for position and every lower
// podium step, from 3 down to position. Positions outside the podium grant
// nothing.
func (s *Service) GrantPodium(ctx context.Context, userID int64, position int) ([]int64, error) {
	if position < 1 || position > PodiumPositions {
		return nil, nil
	}
	var granted []int64
	for p := PodiumPositions; p >= position; p-- {
		ok, err := s.Grant(ctx, userID, podiumAchievements[p], RuleLeaderboard)
		if err != nil {
			return granted, err
		}
		if ok {
			granted = append(granted, podiumAchievements[p])
		}
	}
	return granted, nil
}

func ignoreMissing(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
