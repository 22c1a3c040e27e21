package handlers

import (
	"context"
	"net/http"
	"strings"

	"capychat/prompts"
	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsStore persists per-tenant chat widget settings.
type SettingsStore interface {
	GetChatSettings(ctx context.Context, tenantID int64) (types.ChatSettings, error)
	UpdateChatSettings(ctx context.Context, tenantID int64, u types.ChatSettingsUpdate) error
}

type SettingsHandler struct {
	store  SettingsStore
	logger *zap.Logger
}

func NewSettingsHandler(store SettingsStore, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger}
}

// GetChat returns the widget settings. A blank stored prompt reads as the
// default persona.
func (h *SettingsHandler) GetChat(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	settings, err := h.store.GetChatSettings(c.Request.Context(), tenant.ID)
	if err != nil {
		respondWithAppError(c, err, "Failed to load chat settings", h.logger)
		return
	}
	if strings.TrimSpace(settings.SystemPrompt) == "" {
		settings.SystemPrompt = prompts.ChatPersona()
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateChat(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	var update types.ChatSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Empty() {
		respondWithClientError(c, http.StatusBadRequest, "no settings provided")
		return
	}

	if err := h.store.UpdateChatSettings(c.Request.Context(), tenant.ID, update); err != nil {
		respondWithAppError(c, err, "Failed to save chat settings", h.logger)
		return
	}
	h.GetChat(c)
}
