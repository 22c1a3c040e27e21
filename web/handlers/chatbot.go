package handlers

import (
	"context"
	"net/http"
	"strings"

	"capychat/faq"
	"capychat/web/format"
	"capychat/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// chatbotRetryMessage is the only failure text end users see.
const chatbotRetryMessage = "답변을 생성하지 못했습니다. 잠시 후 다시 시도해 주세요."

// CorpusStore loads what the chatbot needs for one tenant.
type CorpusStore interface {
	ListFAQProjections(ctx context.Context, tenantID int64) ([]types.FAQProjection, error)
	GetChatSettings(ctx context.Context, tenantID int64) (types.ChatSettings, error)
}

// ChatAnswerer produces a grounded answer.
type ChatAnswerer interface {
	Answer(ctx context.Context, req faq.AnswerRequest) (string, error)
}

type ChatbotHandler struct {
	store    CorpusStore
	answerer ChatAnswerer
	logger   *zap.Logger
}

func NewChatbotHandler(store CorpusStore, answerer ChatAnswerer, logger *zap.Logger) *ChatbotHandler {
	return &ChatbotHandler{store: store, answerer: answerer, logger: logger}
}

type chatbotRequest struct {
	Message string `json:"message"`
}

// Message answers one end-user question from the tenant's FAQs.
func (h *ChatbotHandler) Message(c *gin.Context) {
	tenant, ok := currentTenant(c)
	if !ok {
		return
	}

	var req chatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		respondWithClientError(c, http.StatusBadRequest, "message is required")
		return
	}

	ctx := c.Request.Context()
	logger := requestLogger(c, h.logger)

	faqs, err := h.store.ListFAQProjections(ctx, tenant.ID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, chatbotRetryMessage, logger, zap.String("tenant", tenant.Key))
		return
	}
	settings, err := h.store.GetChatSettings(ctx, tenant.ID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, chatbotRetryMessage, logger, zap.String("tenant", tenant.Key))
		return
	}

	answer, err := h.answerer.Answer(ctx, faq.AnswerRequest{
		Message:      strings.TrimSpace(req.Message),
		FAQs:         faqs,
		SystemPrompt: settings.SystemPrompt,
		TenantKey:    tenant.Key,
	})
	if err != nil {
		respondWithMappedError(c, err, chatbotRetryMessage, logger, zap.String("tenant", tenant.Key))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":      answer,
		"answer_html": format.AnswerToHTML(answer),
	})
}
