package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 5 * time.Second

// PostgresConfig holds the DSN and pool settings. Zero values fall back to defaults.
type PostgresConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
	Debug           bool
}

func (c PostgresConfig) withDefaults() PostgresConfig {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.SlowQuery <= 0 {
		c.SlowQuery = 200 * time.Millisecond
	}
	return c
}

type Postgres struct {
	DB *gorm.DB
}

// NewPostgres opens the pool and checks the database is reachable within ctx
func NewPostgres(ctx context.Context, cfg PostgresConfig, log *zap.Logger) (*Postgres, error) {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:               newGormLogger(log, cfg),
		DisableAutomaticPing: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Postgres{DB: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates or updates the plans, subscriptions and chat_messages tables
func (p *Postgres) AutoMigrate(ctx context.Context) error {
	return p.DB.WithContext(ctx).AutoMigrate(
		&models.Plan{},
		&models.Subscription{},
		&models.ChatMessage{},
	)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// gormWriter routes gorm's formatted log lines into zap
type gormWriter struct {
	sugar *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.sugar.Infof(format, args...)
}

func newGormLogger(log *zap.Logger, cfg PostgresConfig) gormlogger.Interface {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}

	return gormlogger.New(gormWriter{sugar: log.Named("gorm").Sugar()}, gormlogger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
