package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	apperrors "capychat/errors"
	"capychat/faq"
	"capychat/utils"
	"capychat/web/services"
	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FAQStore is the FAQ persistence used by the admin API.
type FAQStore interface {
	ListFAQs(ctx context.Context, tenantID int64, filter types.FAQFilter) ([]types.FAQArticle, error)
	CreateFAQ(ctx context.Context, tenantID int64, c types.FAQCandidate) (*types.FAQArticle, error)
	UpdateFAQ(ctx context.Context, tenantID, id int64, u types.FAQUpdate) (*types.FAQArticle, error)
	DeleteFAQ(ctx context.Context, tenantID, id int64) error
	DeleteFAQs(ctx context.Context, tenantID int64, ids []int64) (int, error)
}

// FAQGenerator runs the transcript-to-FAQ pipeline.
type FAQGenerator interface {
	Generate(ctx context.Context, tenantID int64, rawText, defaultCategory string) (*faq.GenerateResult, error)
}

type FAQHandler struct {
	store          FAQStore
	generator      FAQGenerator
	transcripts    *services.TranscriptService
	uploadMaxBytes int64
	logger         *zap.Logger
}

func NewFAQHandler(store FAQStore, generator FAQGenerator, transcripts *services.TranscriptService, uploadMaxBytes int64, logger *zap.Logger) *FAQHandler {
	return &FAQHandler{
		store:          store,
		generator:      generator,
		transcripts:    transcripts,
		uploadMaxBytes: uploadMaxBytes,
		logger:         logger,
	}
}

type generateRequest struct {
	RawText         string `json:"raw_text"`
	DefaultCategory string `json:"default_category"`
}

// GenerateFromLogs extracts FAQs from pasted transcript text.
func (h *FAQHandler) GenerateFromLogs(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	rawText := h.transcripts.Prepare(c.Request.Context(), req.RawText)
	h.runGeneration(c, tenant, rawText, req.DefaultCategory)
}

// GenerateFromFile extracts FAQs from an uploaded transcript file.
func (h *FAQHandler) GenerateFromFile(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	if h.uploadMaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithClientError(c, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		respondWithClientError(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to read uploaded file", requestLogger(c, h.logger))
		return
	}
	defer file.Close()

	filename := utils.SanitizeFilename(fileHeader.Filename)
	rawText, err := h.transcripts.ReadUpload(c.Request.Context(), filename, file, fileHeader.Size)
	if err != nil {
		respondWithAppError(c, err, "Failed to read uploaded file", h.logger, zap.String("filename", filename))
		return
	}

	h.runGeneration(c, tenant, rawText, c.PostForm("default_category"))
}

func (h *FAQHandler) runGeneration(c *gin.Context, tenant *types.Tenant, rawText, defaultCategory string) {
	result, err := h.generator.Generate(c.Request.Context(), tenant.ID, rawText, strings.TrimSpace(defaultCategory))
	if err != nil {
		stage := faq.StageExtracting
		var genErr *faq.GenerateError
		if errors.As(err, &genErr) {
			stage = genErr.Stage
		}

		status := apperrors.HTTPStatus(err)
		message := stage.Description()
		if status >= http.StatusInternalServerError {
			requestLogger(c, h.logger).Error("FAQ generation failed",
				zap.String("tenant", tenant.Key),
				zap.String("stage", string(stage)),
				zap.Error(err))
		}

		c.JSON(status, gin.H{
			"items":              []types.FAQArticle{},
			"added_count":        0,
			"skipped_duplicates": 0,
			"total_after":        0,
			"error":              message,
			"stage":              stage,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// List returns the tenant's FAQs, newest first.
func (h *FAQHandler) List(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	items, err := h.store.ListFAQs(c.Request.Context(), tenant.ID, types.FAQFilter{
		Query:    c.Query("query"),
		Category: c.Query("category"),
	})
	if err != nil {
		respondWithAppError(c, err, "Failed to load FAQs", h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createFAQRequest struct {
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Category string        `json:"category"`
	Media    []types.Media `json:"media"`
}

func (h *FAQHandler) Create(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	var req createFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		respondWithClientError(c, http.StatusBadRequest, "title and content are required")
		return
	}

	created, err := h.store.CreateFAQ(c.Request.Context(), tenant.ID, types.FAQCandidate{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Category:   strings.TrimSpace(req.Category),
		SourceType: types.SourceManual,
		Media:      faq.NormalizeMedia(mediaAsAny(req.Media)),
	})
	if err != nil {
		respondWithAppError(c, err, "Failed to create FAQ", h.logger)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *FAQHandler) Update(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var update types.FAQUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Media != nil {
		media := faq.NormalizeMedia(mediaAsAny(*update.Media))
		update.Media = &media
	}

	updated, err := h.store.UpdateFAQ(c.Request.Context(), tenant.ID, id, update)
	if err != nil {
		respondWithAppError(c, err, "Failed to update FAQ", h.logger, zap.Int64("faq_id", id))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *FAQHandler) Delete(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteFAQ(c.Request.Context(), tenant.ID, id); err != nil {
		respondWithAppError(c, err, "Failed to delete FAQ", h.logger, zap.Int64("faq_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type deleteBulkRequest struct {
	IDs []json.RawMessage `json:"ids"`
}

// DeleteBulk removes several FAQs; ids that are not numbers are ignored.
func (h *FAQHandler) DeleteBulk(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	var req deleteBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	ids := parseIDs(req.IDs)
	if len(ids) == 0 {
		respondWithClientError(c, http.StatusBadRequest, "ids are required")
		return
	}

	deleted, err := h.store.DeleteFAQs(c.Request.Context(), tenant.ID, ids)
	if err != nil {
		respondWithAppError(c, err, "Failed to delete FAQs", h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// parseIDs accepts JSON numbers and numeric strings.
func parseIDs(raw []json.RawMessage) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				continue
			}
			n = json.Number(strings.TrimSpace(s))
		}
		id, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func mediaAsAny(media []types.Media) any {
	list := make([]any, 0, len(media))
	for _, m := range media {
		list = append(list, map[string]any{"kind": m.Kind, "url": m.URL, "name": m.Name})
	}
	return list
}
