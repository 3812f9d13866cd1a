package handler

import (
	"context"
	"net/http"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/middleware"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardReader interface {
	Summary(ctx context.Context, p *service.Principal) (*service.Dashboard, error)
}

type DashboardHandler struct {
	service DashboardReader
}

func NewDashboardHandler(service DashboardReader) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Handles GET /api/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	dashboard, err := h.service.Summary(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Handles GET /api/me
func (h *DashboardHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, principal)
}
