package repository

import (
	"context"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
)

type ChatMessageRepository struct {
	db *storage.Postgres
}

func NewChatMessageRepository(db *storage.Postgres) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

func (r *ChatMessageRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.DB.WithContext(ctx).Create(msg).Error
}

// Counts a user's relayed messages since the given time
func (r *ChatMessageRepository) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error

	return count, err
}
