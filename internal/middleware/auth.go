package middleware

import (
	"net/http"
	"strings"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"
	UserIDKey    = "user_id"
	EmailKey     = "email"
	RoleKey      = "role"
)

type TokenValidator interface {
	ValidateToken(token string) (*service.Principal, error)
}

// Validates the bearer token and requires authentication
func RequireAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
			return
		}

		principal, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// SetPrincipal stores the caller and its user_id, email and role keys on the context
func SetPrincipal(c *gin.Context, p *service.Principal) {
	c.Set(principalKey, p)
	c.Set(UserIDKey, p.UserID)
	c.Set(EmailKey, p.Email)
	c.Set(RoleKey, p.Role)
}

// PrincipalFrom returns the caller stored by RequireAuth
func PrincipalFrom(c *gin.Context) (*service.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*service.Principal)
	return p, ok && p != nil
}

// Requires RequireAuth earlier in the chain
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok || p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}
		c.Next()
	}
}
