package repository

import (
	"context"
	"errors"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
	"gorm.io/gorm"
)

type PlanRepository struct {
	db *storage.Postgres
}

func NewPlanRepository(db *storage.Postgres) *PlanRepository {
	return &PlanRepository{db: db}
}

// Retrieves active plans, cheapest first
func (r *PlanRepository) ListActive(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price_cents ASC").
		Find(&plans).Error

	return plans, err
}

// Retrieves an active plan by id or slug. Returns nil when none matches.
func (r *PlanRepository) FindActive(ctx context.Context, idOrSlug string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.DB.WithContext(ctx).
		Where("(id::text = ? OR slug = ?) AND is_active = ?", idOrSlug, idOrSlug, true).
		First(&plan).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &plan, nil
}
