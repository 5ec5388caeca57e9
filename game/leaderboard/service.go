// Package leaderboard ranks users by XP and hands podium positions to the
// achievement rules.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/achievement"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnranked is returned for users with no positive XP.
var ErrUnranked = errors.New("leaderboard: unranked")

const (
	boardKey     = "leaderboard:top"
	defaultSize  = 100
	defaultTTL   = time.Minute
	podiumLength = achievement.PodiumPositions
)

// Entry is one row of the board.
type Entry struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	XP       int64  `json:"xp"`
	Level    int    `json:"level"`
}

// Service computes ranks and serves the cached board.
type Service struct {
	store  *store.Store
	cache  cache.Cache
	awards *achievement.Service
	group  singleflight.Group
	size   int
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a leaderboard Service.
func NewService(st *store.Store, c cache.Cache, awards *achievement.Service, cfg config.ProgressionConfig, logger *zap.Logger) *Service {
	s := &Service{store: st, cache: c, awards: awards, size: cfg.LeaderboardSize, ttl: cfg.LeaderboardTTL, logger: logger}
	if s.size <= 0 {
		s.size = defaultSize
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	return s
}

// RankOf returns the 1-indexed position of the user among all users with
// XP > 0, ordered by XP descending then user id ascending. Two users never
// share a rank.
func (s *Service) RankOf(ctx context.Context, userID int64) (int, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if u.XP <= 0 {
		return 0, ErrUnranked
	}
	users, err := s.store.ListUsersWithPositiveXP(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaderboard: list users: %w", err)
	}
	for i, other := range users {
		if other.ID == userID {
			return i + 1, nil
		}
	}
	return 0, ErrUnranked
}

// Evaluate ranks the user and grants the podium awards for that position.
// Unranked and unknown users are skipped without error.
func (s *Service) Evaluate(ctx context.Context, userID int64) ([]int64, error) {
	pos, err := s.RankOf(ctx, userID)
	if errors.Is(err, ErrUnranked) || errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pos > podiumLength {
		return nil, nil
	}
	return s.awards.GrantPodium(ctx, userID, pos)
}

// PodiumCheck evaluates the current top of the board. It catches podium
// awards a user reached through someone else's XP change.
func (s *Service) PodiumCheck(ctx context.Context) error {
	top, err := s.store.ListTopUsers(ctx, podiumLength)
	if err != nil {
		return fmt.Errorf("leaderboard: podium: %w", err)
	}
	for i, u := range top {
		granted, err := s.awards.GrantPodium(ctx, u.ID, i+1)
		if err != nil {
			return err
		}
		if len(granted) > 0 {
			s.logger.Info("podium awards granted",
				zap.Int64("user_id", u.ID), zap.Int("rank", i+1), zap.Int64s("achievements", granted))
		}
	}
	return nil
}

// Top returns up to limit entries of the board. limit <= 0 or above the
// configured size returns the whole board.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	board, err := s.board(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(board) {
		board = board[:limit]
	}
	return board, nil
}

// Invalidate drops the cached board. The next Top rebuilds it.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, boardKey); err != nil {
		s.logger.Warn("leaderboard invalidate failed", zap.Error(err))
	}
}

// Refresh rebuilds the cached board now.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.rebuild(ctx)
	return err
}

func (s *Service) board(ctx context.Context) ([]Entry, error) {
	raw, err := s.cache.Get(ctx, boardKey)
	if err == nil {
		var board []Entry
		if jerr := json.Unmarshal([]byte(raw), &board); jerr == nil {
			return board, nil
		}
		s.logger.Warn("cached leaderboard corrupt, rebuilding")
	} else if !cache.IsNotFound(err) {
		s.logger.Warn("leaderboard cache read failed", zap.Error(err))
	}

	// The rebuild is shared by every waiter, so it must not die with the
	// first caller's context.
	v, err, _ := s.group.Do(boardKey, func() (interface{}, error) {
		return s.rebuild(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

func (s *Service) rebuild(ctx context.Context) ([]Entry, error) {
	users, err := s.store.ListTopUsers(ctx, s.size)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: rebuild: %w", err)
	}
	board := make([]Entry, len(users))
	for i, u := range users {
		board[i] = Entry{Rank: i + 1, UserID: u.ID, Username: u.Username, Name: u.Name, XP: u.XP, Level: u.Level}
	}
	data, err := json.Marshal(board)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, boardKey, string(data), s.ttl); err != nil {
		s.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}
	return board, nil
}
