package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/store"
	"github.com/playmatatu/pinball/internal/table"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, physics.ErrUnknownItem),
		errors.Is(err, physics.ErrUnknownBall):
		return http.StatusNotFound
	case errors.Is(err, table.ErrInvalidLayout),
		errors.Is(err, physics.ErrWrongKind),
		errors.Is(err, game.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrSessionLimit),
		errors.Is(err, game.ErrBallLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
