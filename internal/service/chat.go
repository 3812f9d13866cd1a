package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/relay"
	"go.uber.org/zap"
)

const MaxChatMessageLength = 4000

var (
	ErrEmptyMessage       = errors.New("message is required")
	ErrMessageTooLong     = fmt.Errorf("message exceeds %d characters", MaxChatMessageLength)
	ErrWebhookUnavailable = errors.New("chat assistant is temporarily unavailable")
	ErrWebhookFailed      = errors.New("chat assistant request failed")
)

type Poster interface {
	PostJSON(ctx context.Context, path string, payload interface{}) (*relay.Response, error)
}

type ChatLogStore interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// What the automation webhook receives. Its answer is returned to the caller unchanged.
type webhookPayload struct {
	Message   string    `json:"message"`
	SessionID string    `json:"session_id,omitempty"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatService struct {
	webhook Poster
	store   ChatLogStore
	logger  *zap.Logger
	now     func() time.Time
}

// store may be nil, in which case relayed messages are not recorded
func NewChatService(webhook Poster, store ChatLogStore, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		webhook: webhook,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Forwards one user message to the automation webhook
func (s *ChatService) Send(ctx context.Context, p *Principal, req ChatRequest) (*relay.Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxChatMessageLength {
		return nil, ErrMessageTooLong
	}

	payload := webhookPayload{
		Message:   message,
		SessionID: req.SessionID,
		UserID:    p.UserID,
		Email:     p.Email,
		Timestamp: s.now().UTC(),
	}

	start := s.now()
	resp, err := s.webhook.PostJSON(ctx, "", payload)
	latency := s.now().Sub(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	s.record(ctx, p.UserID, req.SessionID, message, status, latency)

	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, relay.ErrNotConfigured), errors.Is(err, relay.ErrUnavailable):
		return nil, fmt.Errorf("%w: %v", ErrWebhookUnavailable, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrWebhookFailed, err)
	}
}

func (s *ChatService) record(ctx context.Context, userID, sessionID, message string, status int, latency time.Duration) {
	if s.store == nil {
		return
	}

	entry := &models.ChatMessage{
		UserID:     userID,
		SessionID:  sessionID,
		Length:     utf8.RuneCountInString(message),
		StatusCode: status,
		LatencyMs:  int(latency.Milliseconds()),
	}
	if err := s.store.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record chat message", zap.String("user_id", userID), zap.Error(err))
	}
}
