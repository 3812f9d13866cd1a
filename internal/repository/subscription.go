package repository

import (
	"context"
	"errors"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *storage.Postgres
}

func NewSubscriptionRepository(db *storage.Postgres) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.DB.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *SubscriptionRepository) SetProviderSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("provider_session_id", sessionID).Error
}

// Most recent non-failed subscription for a user, with its plan. Nil when the user has none.
func (r *SubscriptionRepository) LatestForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.DB.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status <> ?", userID, models.SubscriptionFailed).
		Order("created_at DESC").
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}
