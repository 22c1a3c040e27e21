package handlers

import (
	"net/http"
	"strconv"

	apperrors "capychat/errors"
	"capychat/web/middleware"
	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	if logger != nil {
		fields = append(fields, zap.Error(technicalError))
		logger.Error("Request failed", fields...)
	}

	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithAppError picks the status from the error kind. Client errors
// echo their message; everything else is logged and replaced by userMessage.
func respondWithAppError(c *gin.Context, err error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	status := apperrors.HTTPStatus(err)
	switch status {
	case http.StatusBadRequest:
		respondWithClientError(c, status, err.Error())
	case http.StatusNotFound:
		respondWithClientError(c, status, "Not found")
	default:
		respondWithError(c, status, err, userMessage, requestLogger(c, logger), fields...)
	}
}

// requestLogger prefers the request-scoped logger set by middleware.
func requestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	return fallback
}

// currentTenant returns the resolved tenant or aborts with 500.
func currentTenant(c *gin.Context) (*types.Tenant, bool) {
	tenant, ok := middleware.TenantFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tenant not resolved"})
		return nil, false
	}
	return tenant, true
}

// pathID parses the :id route parameter, responding 400 when it is not numeric.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithClientError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// respondWithMappedError keeps the mapped status but always hides the
// technical message behind userMessage.
func respondWithMappedError(c *gin.Context, err error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	respondWithError(c, apperrors.HTTPStatus(err), err, userMessage, logger, fields...)
}
