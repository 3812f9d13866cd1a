package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"go.uber.org/zap"
)

var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrStorageUnavailable = errors.New("storage not configured")
)

type PlanStore interface {
	ListActive(ctx context.Context) ([]models.Plan, error)
	FindActive(ctx context.Context, idOrSlug string) (*models.Plan, error)
}

// Cache is satisfied by storage.RedisClient
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type PlanService struct {
	store  PlanStore
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// store and cache may be nil
func NewPlanService(store PlanStore, cache Cache, ttl time.Duration, logger *zap.Logger) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	const cacheKey = "plans:cache:active"

	var plans []models.Plan
	if s.fromCache(ctx, cacheKey, &plans) {
		return plans, nil
	}

	plans, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []models.Plan{}
	}

	s.toCache(ctx, cacheKey, plans)
	return plans, nil
}

// Get looks a plan up by id or slug
func (s *PlanService) Get(ctx context.Context, idOrSlug string) (*models.Plan, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	cacheKey := fmt.Sprintf("plans:cache:%s", idOrSlug)

	var plan models.Plan
	if s.fromCache(ctx, cacheKey, &plan) {
		return &plan, nil
	}

	found, err := s.store.FindActive(ctx, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	if found == nil {
		return nil, ErrPlanNotFound
	}

	s.toCache(ctx, cacheKey, found)
	return found, nil
}

func (s *PlanService) fromCache(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key)
	if err != nil || cached == "" {
		return false
	}

	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		s.logger.Warn("discarding unreadable plan cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *PlanService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("failed to cache plan lookup", zap.String("key", key), zap.Error(err))
	}
}
