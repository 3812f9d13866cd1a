package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/relay"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCheckoutUnavailable = errors.New("payment provider is temporarily unavailable")
	ErrCheckoutFailed      = errors.New("payment provider request failed")
)

type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetProviderSession(ctx context.Context, id uuid.UUID, sessionID string) error
	LatestForUser(ctx context.Context, userID string) (*models.Subscription, error)
}

type PlanLookup interface {
	Get(ctx context.Context, idOrSlug string) (*models.Plan, error)
}

type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CheckoutURL    string    `json:"checkout_url"`
}

type providerSessionRequest struct {
	Reference     string `json:"reference"`
	PlanID        string `json:"plan_id"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"`
	CustomerEmail string `json:"customer_email,omitempty"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
}

type providerSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CheckoutService struct {
	plans    PlanLookup
	subs     SubscriptionStore
	provider Poster
	cfg      CheckoutConfig
	logger   *zap.Logger
}

func NewCheckoutService(plans PlanLookup, subs SubscriptionStore, provider Poster, cfg CheckoutConfig, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		plans:    plans,
		subs:     subs,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Create opens a hosted checkout session for planID and records a pending subscription
func (s *CheckoutService) Create(ctx context.Context, p *Principal, planID string) (*CheckoutSession, error) {
	if s.subs == nil {
		return nil, ErrStorageUnavailable
	}

	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		UserID: p.UserID,
		PlanID: plan.ID,
		Status: models.SubscriptionPending,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	resp, err := s.provider.PostJSON(ctx, "/sessions", providerSessionRequest{
		Reference:     sub.ID.String(),
		PlanID:        plan.ID.String(),
		PriceCents:    plan.PriceCents,
		Currency:      plan.Currency,
		Interval:      plan.Interval,
		CustomerEmail: p.Email,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		s.markFailed(ctx, sub.ID)
		if errors.Is(err, relay.ErrNotConfigured) || errors.Is(err, relay.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	var session providerSessionResponse
	if err := json.Unmarshal(resp.Body, &session); err != nil || session.URL == "" {
		s.markFailed(ctx, sub.ID)
		return nil, fmt.Errorf("%w: unreadable session response", ErrCheckoutFailed)
	}

	if err := s.subs.SetProviderSession(ctx, sub.ID, session.ID); err != nil {
		s.logger.Warn("failed to store provider session",
			zap.String("subscription_id", sub.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("checkout session created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("plan", plan.Slug),
		zap.String("user_id", p.UserID),
	)

	return &CheckoutSession{
		SubscriptionID: sub.ID,
		CheckoutURL:    session.URL,
	}, nil
}

func (s *CheckoutService) markFailed(ctx context.Context, id uuid.UUID) {
	if err := s.subs.UpdateStatus(ctx, id, models.SubscriptionFailed); err != nil {
		s.logger.Warn("failed to mark subscription failed", zap.String("subscription_id", id.String()), zap.Error(err))
	}
}
