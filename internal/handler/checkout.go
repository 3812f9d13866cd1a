package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/middleware"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

type CheckoutCreator interface {
	Create(ctx context.Context, p *service.Principal, planID string) (*service.CheckoutSession, error)
}

type CheckoutHandler struct {
	service CheckoutCreator
}

func NewCheckoutHandler(service CheckoutCreator) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Handles POST /api/checkout
func (h *CheckoutHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		PlanID string `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id is required"})
		return
	}

	session, err := h.service.Create(c.Request.Context(), principal, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": service.ErrCheckoutUnavailable.Error()})
		case errors.Is(err, service.ErrCheckoutFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrCheckoutFailed.Error()})
		default:
			respondServiceError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}
