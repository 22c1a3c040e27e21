package handlers

import (
	"net/http"

	"capychat/web/templates"
	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DocsHandler struct {
	store  FAQStore
	logger *zap.Logger
}

func NewDocsHandler(store FAQStore, logger *zap.Logger) *DocsHandler {
	return &DocsHandler{store: store, logger: logger}
}

// Page renders the tenant's public FAQ page grouped by category.
func (h *DocsHandler) Page(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	items, err := h.store.ListFAQs(c.Request.Context(), tenant.ID, types.FAQFilter{})
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to load FAQs", requestLogger(c, h.logger),
			zap.String("tenant", tenant.Key))
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	page := templates.DocsPage("자주 묻는 질문", templates.GroupByCategory(items))
	if err := page.Render(c.Request.Context(), c.Writer); err != nil {
		requestLogger(c, h.logger).Error("Failed to render docs page", zap.Error(err))
	}
}
