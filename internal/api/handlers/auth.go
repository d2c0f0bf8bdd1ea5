package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/middleware"
	"github.com/playmatatu/pinball/internal/models"
)

// Authenticator checks operator credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.Operator, error)
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IssueToken exchanges operator credentials for a bearer token
func IssueToken(auth Authenticator, cfg *config.Config) gin.HandlerFunc {
	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}

		op, err := auth.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		token, exp, err := middleware.IssueToken(cfg.JWTSecret, op.ID, op.Username, ttl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp,
			"operator":   op,
		})
	}
}
