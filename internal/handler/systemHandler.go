package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/ratelimit"
	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/relay"
	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handles system-related endpoints
type SystemHandler struct {
	relays    map[string]*relay.Client
	checks    map[string]Pinger
	limiter   *ratelimit.MemoryLimiter
	startTime time.Time
}

// limiter is nil when rate limits are kept in Redis
func NewSystemHandler(relays map[string]*relay.Client, checks map[string]Pinger, limiter *ratelimit.MemoryLimiter) *SystemHandler {
	return &SystemHandler{
		relays:    relays,
		checks:    checks,
		limiter:   limiter,
		startTime: time.Now(),
	}
}

// Handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	statusCode := http.StatusOK

	checks := gin.H{}
	for name, p := range h.checks {
		healthy := p.Ping(ctx) == nil
		checks[name] = healthy
		if !healthy {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	relays := gin.H{}
	for name, r := range h.relays {
		relays[name] = gin.H{
			"configured": r.Configured(),
			"breaker":    r.BreakerMetrics().State.String(),
		}
	}

	body := gin.H{
		"status":    status,
		"service":   "portal",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now().Unix(),
		"checks":    checks,
		"relays":    relays,
	}
	if h.limiter != nil {
		body["rate_limit_entries"] = h.limiter.Len()
	}

	c.JSON(statusCode, body)
}

// Returns the status of all circuit breakers
func (h *SystemHandler) CircuitBreakerStatus(c *gin.Context) {
	statuses := make(map[string]interface{})
	for name, r := range h.relays {
		statuses[name] = r.BreakerMetrics()
	}

	c.JSON(http.StatusOK, statuses)
}

// Manually resets a circuit breaker
func (h *SystemHandler) ResetCircuitBreaker(c *gin.Context) {
	name := c.Param("name")

	r, exists := h.relays[name]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Relay not found",
		})
		return
	}

	r.ResetBreaker()

	c.JSON(http.StatusOK, gin.H{
		"message": "Circuit breaker reset successfully",
		"relay":   name,
	})
}
