package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "capychat/errors"
	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	TenantHeader = "X-Tenant-Key"
	TenantQuery  = "tenant"
	tenantKeyCtx = "tenant"
	loggerKeyCtx = "logger"
)

// TenantResolver looks tenants up by key.
type TenantResolver interface {
	GetTenantByKey(ctx context.Context, key string) (*types.Tenant, error)
}

// TenantMiddleware resolves the tenant from ?tenant=, then X-Tenant-Key,
// then the configured default. Unknown tenants get 404.
func TenantMiddleware(resolver TenantResolver, defaultKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Query(TenantQuery))
		if key == "" {
			key = strings.TrimSpace(c.GetHeader(TenantHeader))
		}
		if key == "" {
			key = defaultKey
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenant is required"})
			return
		}

		tenant, err := resolver.GetTenantByKey(c.Request.Context(), key)
		if err != nil {
			if apperrors.IsNotFound(err) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown tenant"})
				return
			}
			if logger := LoggerFromContext(c); logger != nil {
				logger.Error("Failed to resolve tenant", zap.String("tenant", key), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve tenant"})
			return
		}

		c.Set(tenantKeyCtx, tenant)
		c.Next()
	}
}

// TenantFromContext returns the tenant set by TenantMiddleware.
func TenantFromContext(c *gin.Context) (*types.Tenant, bool) {
	v, ok := c.Get(tenantKeyCtx)
	if !ok {
		return nil, false
	}
	t, ok := v.(*types.Tenant)
	return t, ok && t != nil
}

// LoggerFromContext returns the request logger, or nil.
func LoggerFromContext(c *gin.Context) *zap.Logger {
	v, ok := c.Get(loggerKeyCtx)
	if !ok {
		return nil
	}
	logger, _ := v.(*zap.Logger)
	return logger
}
