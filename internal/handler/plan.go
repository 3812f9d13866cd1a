package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanReader interface {
	List(ctx context.Context) ([]models.Plan, error)
	Get(ctx context.Context, idOrSlug string) (*models.Plan, error)
}

type PlanHandler struct {
	service PlanReader
}

func NewPlanHandler(service PlanReader) *PlanHandler {
	return &PlanHandler{service: service}
}

// Handles GET /api/plans
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Handles GET /api/plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Maps shared service errors onto status codes
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
