package mysql

import (
	"testing"
	"time"

	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolFrom_Defaults(t *testing.T) {
	p := PoolFrom(config.DatabaseConfig{})
	assert.Equal(t, Pool{MaxOpen: defaultMaxOpen, MaxIdle: defaultMaxIdle, MaxLife: defaultMaxLife}, p)
}

func TestPoolFrom_IdleCappedByOpen(t *testing.T) {
	p := PoolFrom(config.DatabaseConfig{MySQLMaxOpen: 3, MySQLMaxIdle: 10, MySQLMaxLife: time.Minute})
	assert.Equal(t, Pool{MaxOpen: 3, MaxIdle: 3, MaxLife: time.Minute}, p)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Mode: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty dsn")
}
