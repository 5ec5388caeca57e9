package store

import (
	"context"

	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.with(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUserForUpdate reads a user and takes a row lock on dialects that
// support SELECT ... FOR UPDATE. Only meaningful inside Transaction.
func (s *Store) GetUserForUpdate(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.with(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.with(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return s.with(ctx).Create(u).Error
}

// UpdateUser writes the given columns of one user.
func (s *Store) UpdateUser(ctx context.Context, id int64, fields map[string]interface{}) error {
	return s.with(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// AddXP increments a user's XP in the store so concurrent increments never
// overwrite each other.
func (s *Store) AddXP(ctx context.Context, id int64, amount int64) error {
	return s.with(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("xp", gorm.Expr("xp + ?", amount)).Error
}

// ListUsersWithPositiveXP returns every user with XP > 0 ordered by XP
// descending, ties broken by ascending user id.
func (s *Store) ListUsersWithPositiveXP(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.with(ctx).Select("id, username, name, xp, level").
		Where("xp > ?", 0).
		Order("xp DESC").Order("id ASC").
		Find(&users).Error
	return users, err
}

// ListTopUsers is ListUsersWithPositiveXP truncated to limit rows.
func (s *Store) ListTopUsers(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := s.with(ctx).Select("id, username, name, xp, level").
		Where("xp > ?", 0).
		Order("xp DESC").Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// Totals is a coarse snapshot of progression volume.
type Totals struct {
	Users   int64 `json:"users"`
	Ranked  int64 `json:"ranked"`
	TotalXP int64 `json:"total_xp"`
}

func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.with(ctx).Model(&model.User{}).
		Select("COUNT(*) AS users, COALESCE(SUM(CASE WHEN xp > 0 THEN 1 ELSE 0 END), 0) AS ranked, COALESCE(SUM(xp), 0) AS total_xp").
		Scan(&t).Error
	return t, err
}
