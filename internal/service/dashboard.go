package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
)

const dashboardActivityWindow = 30 * 24 * time.Hour

type ChatActivityStore interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

type SubscriptionLookup interface {
	LatestForUser(ctx context.Context, userID string) (*models.Subscription, error)
}

type Dashboard struct {
	User            *Principal           `json:"user"`
	Subscription    *models.Subscription `json:"subscription"`
	ChatMessages30d int64                `json:"chat_messages_30d"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

type DashboardService struct {
	subs SubscriptionLookup
	chat ChatActivityStore
	now  func() time.Time
}

func NewDashboardService(subs SubscriptionLookup, chat ChatActivityStore) *DashboardService {
	return &DashboardService{
		subs: subs,
		chat: chat,
		now:  time.Now,
	}
}

// Summary gathers the data the client dashboard renders for the caller
func (s *DashboardService) Summary(ctx context.Context, p *Principal) (*Dashboard, error) {
	if s.subs == nil || s.chat == nil {
		return nil, ErrStorageUnavailable
	}

	now := s.now()

	sub, err := s.subs.LatestForUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	count, err := s.chat.CountSince(ctx, p.UserID, now.Add(-dashboardActivityWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count chat activity: %w", err)
	}

	return &Dashboard{
		User:            p,
		Subscription:    sub,
		ChatMessages30d: count,
		GeneratedAt:     now.UTC(),
	}, nil
}
