// Package badge grants admin-awarded recognitions.
package badge

import (
	"context"
	"errors"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"go.uber.org/zap"
)

// ErrAlreadyGranted is returned when the user already holds the badge.
var ErrAlreadyGranted = errors.New("badge: already granted")

type Service struct {
	store  *store.Store
	logger *zap.Logger
}

func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Grant gives badgeID to userID. grantedBy is the acting admin, if known.
func (s *Service) Grant(ctx context.Context, userID, badgeID int64, grantedBy *int64) (*model.Badge, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	b, err := s.store.GetBadge(ctx, badgeID)
	if err != nil {
		return nil, err
	}
	inserted, err := s.store.InsertUserBadge(ctx, userID, badgeID, grantedBy)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyGranted
	}
	s.logger.Info("badge granted", zap.Int64("user_id", userID), zap.Int64("badge_id", badgeID))
	return b, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]model.Badge, error) {
	return s.store.ListUserBadges(ctx, userID)
}
