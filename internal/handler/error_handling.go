package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinema-server/internal/collaboration"
	"cinema-server/internal/generation"
	"cinema-server/shared/models"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var msg string

	var exhausted *generation.ExhaustedError
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		msg = "Unauthorized"
	case errors.Is(err, collaboration.ErrSessionExpired):
		statusCode = http.StatusForbidden
		msg = "Collaboration session expired"
	case errors.Is(err, collaboration.ErrAccessDenied), errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		msg = "Access denied"
	case errors.Is(err, collaboration.ErrSessionNotFound):
		statusCode = http.StatusNotFound
		msg = "Collaboration session not found"
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		msg = "Resource not found"
	case errors.Is(err, generation.ErrNoCandidates):
		statusCode = http.StatusServiceUnavailable
		msg = "No AI provider credentials configured"
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusGatewayTimeout
		msg = "Upstream provider timed out"
	case errors.As(err, &exhausted):
		// Текст ошибки последнего провайдера отдается как есть
		statusCode = http.StatusBadGateway
		msg = exhausted.Error()
	case errors.Is(err, generation.ErrJobFailed):
		statusCode = http.StatusBadGateway
		msg = err.Error()
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		msg = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: msg})
}
