package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultMaxOpen = 20
	defaultMaxIdle = 5
	defaultMaxLife = time.Hour
	pingTimeout    = 5 * time.Second
)

// Pool is the connection pool applied to the progression database.
type Pool struct {
	MaxOpen int
	MaxIdle int
	MaxLife time.Duration
}

// PoolFrom fills unset pool settings with defaults. MaxIdle never exceeds
// MaxOpen.
func PoolFrom(cfg config.DatabaseConfig) Pool {
	p := Pool{MaxOpen: cfg.MySQLMaxOpen, MaxIdle: cfg.MySQLMaxIdle, MaxLife: cfg.MySQLMaxLife}
	if p.MaxOpen <= 0 {
		p.MaxOpen = defaultMaxOpen
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = defaultMaxIdle
	}
	if p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen
	}
	if p.MaxLife <= 0 {
		p.MaxLife = defaultMaxLife
	}
	return p
}

// Open connects to the MySQL progression store and checks it answers.
// Indexed string columns (usernames, badge codes) are sized 191 so their
// unique indexes fit the utf8mb4 key limit.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("mysql: empty dsn")
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.MySQLDSN,
		DefaultStringSize: 191,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql: pool: %w", err)
	}
	p := PoolFrom(cfg)
	sqlDB.SetMaxOpenConns(p.MaxOpen)
	sqlDB.SetMaxIdleConns(p.MaxIdle)
	sqlDB.SetConnMaxLifetime(p.MaxLife)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return db, nil
}
