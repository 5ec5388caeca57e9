package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	dbadapter "github.com/Regyyyy/gamify-oss-app-sub000/db"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// SetupTestDB creates a private in-memory SQLite DB, runs AutoMigrate and
// seeds the reference catalog. It requires no external services.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLiteMemory,
		SQLitePath: fmt.Sprintf("testdb_%d", dbSeq.Add(1)),
	})
	require.NoError(t, err, "SetupTestDB: Open")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	require.NoError(t, model.SeedCatalog(db), "SetupTestDB: SeedCatalog")
	return db
}

// SetupTestCache creates a LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(cache.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: NewCache")
	return c
}

// NewUser inserts a member with the given XP and the level stored as given.
func NewUser(t *testing.T, db *gorm.DB, username string, xp int64, level int) *model.User {
	t.Helper()
	u := &model.User{Username: username, Name: username, PasswordHash: "x", Role: model.RoleMember, XP: xp, Level: level}
	require.NoError(t, db.Create(u).Error, "NewUser")
	return u
}

// Logger returns a development logger for tests.
func Logger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }
