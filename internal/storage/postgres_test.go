package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPostgresConfig_Defaults(t *testing.T) {
	tests := []struct {
		name string
		in   PostgresConfig
		want PostgresConfig
	}{
		{
			name: "zero values",
			in:   PostgresConfig{DSN: "dsn"},
			want: PostgresConfig{DSN: "dsn", MaxIdleConns: 5, MaxOpenConns: 25, ConnMaxLifetime: time.Hour, SlowQuery: 200 * time.Millisecond},
		},
		{
			name: "idle capped at open",
			in:   PostgresConfig{MaxIdleConns: 10, MaxOpenConns: 4, ConnMaxLifetime: time.Minute, SlowQuery: time.Second},
			want: PostgresConfig{MaxIdleConns: 4, MaxOpenConns: 4, ConnMaxLifetime: time.Minute, SlowQuery: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.withDefaults())
		})
	}
}

func TestGormWriter_LogsThroughZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := gormWriter{sugar: zap.New(core).Named("gorm").Sugar()}

	w.Printf("%s [%.3fms] %s", "slow query", 1.5, "SELECT 1")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "slow query [1.500ms] SELECT 1", entry.Message)
	assert.Equal(t, "gorm", entry.LoggerName)
}

func TestNewPostgres_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewPostgres(ctx, PostgresConfig{
		DSN: "host=127.0.0.1 port=1 user=portal dbname=portal sslmode=disable connect_timeout=1",
	}, zap.NewNop())
	assert.Error(t, err)
}
