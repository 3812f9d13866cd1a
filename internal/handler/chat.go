package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/middleware"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/relay"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

type ChatSender interface {
	Send(ctx context.Context, p *service.Principal, req service.ChatRequest) (*relay.Response, error)
}

type ChatHandler struct {
	service ChatSender
}

func NewChatHandler(service ChatSender) *ChatHandler {
	return &ChatHandler{service: service}
}

// Handles POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	resp, err := h.service.Send(c.Request.Context(), principal, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrWebhookUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": service.ErrWebhookUnavailable.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrWebhookFailed.Error()})
		}
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, resp.Body)
}
