package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionPending  = "pending"
	SubscriptionActive   = "active"
	SubscriptionFailed   = "failed"
	SubscriptionCanceled = "canceled"
)

type Subscription struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID            string    `gorm:"index;not null" json:"user_id"`
	PlanID            uuid.UUID `gorm:"type:uuid;not null" json:"plan_id"`
	Plan              *Plan     `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status            string    `gorm:"index;default:'pending'" json:"status"`
	ProviderSessionID string    `gorm:"index" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Subscription) TableName() string {
	return "subscriptions"
}
