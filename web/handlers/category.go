package handlers

import (
	"context"
	"net/http"
	"strings"

	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CategoryStore is the category persistence used by the admin API.
type CategoryStore interface {
	ListCategories(ctx context.Context, tenantID int64) ([]types.Category, error)
	CreateCategory(ctx context.Context, tenantID int64, name string) (*types.Category, error)
	RenameCategory(ctx context.Context, tenantID, id int64, name string) (*types.Category, error)
	DeleteCategory(ctx context.Context, tenantID, id int64) error
}

type CategoryHandler struct {
	store  CategoryStore
	logger *zap.Logger
}

func NewCategoryHandler(store CategoryStore, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{store: store, logger: logger}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	categories, err := h.store.ListCategories(c.Request.Context(), tenant.ID)
	if err != nil {
		respondWithAppError(c, err, "Failed to load categories", h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithClientError(c, http.StatusBadRequest, "name is required")
		return
	}
	created, err := h.store.CreateCategory(c.Request.Context(), tenant.ID, req.Name)
	if err != nil {
		respondWithAppError(c, err, "Failed to create category", h.logger)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithClientError(c, http.StatusBadRequest, "name is required")
		return
	}
	updated, err := h.store.RenameCategory(c.Request.Context(), tenant.ID, id, req.Name)
	if err != nil {
		respondWithAppError(c, err, "Failed to update category", h.logger, zap.Int64("category_id", id))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(c.Request.Context(), tenant.ID, id); err != nil {
		respondWithAppError(c, err, "Failed to delete category", h.logger, zap.Int64("category_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
