package faq

import (
	"context"
	"net/url"
	"strings"

	"capychat/config"
	apperrors "capychat/errors"
	"capychat/metrics"
	"capychat/prompts"
	"capychat/web/types"

	"go.uber.org/zap"
)

// AnswerRequest carries one chatbot question and the tenant's FAQ corpus.
type AnswerRequest struct {
	Message      string
	FAQs         []types.FAQProjection
	SystemPrompt string
	TenantKey    string
}

// Answerer grounds chatbot replies in the tenant's FAQs.
type Answerer struct {
	completer  Completer
	logger     *zap.Logger
	opts       RetrievalOptions
	siteBase   string
	supportURL string
}

func NewAnswerer(cfg *config.Config, completer Completer, logger *zap.Logger) *Answerer {
	return &Answerer{
		completer: completer,
		logger:    logger,
		opts: RetrievalOptions{
			LowScore:  cfg.RetrievalLowScore,
			TopK:      cfg.RetrievalTopK,
			BroadTopK: cfg.RetrievalBroadTopK,
		},
		siteBase:   cfg.SiteBaseURL,
		supportURL: cfg.SupportURL,
	}
}

// FAQLink is the public docs page for a tenant.
func (a *Answerer) FAQLink(tenantKey string) string {
	return a.siteBase + "/docs?tenant=" + url.QueryEscape(tenantKey)
}

// BuildAnswerMessages ranks the FAQs and renders the system and user prompts.
func (a *Answerer) BuildAnswerMessages(req AnswerRequest) []types.AgentMessage {
	selected := SelectWindow(Rank(req.Message, req.FAQs), a.opts)
	faqLink := a.FAQLink(req.TenantKey)

	persona := req.SystemPrompt
	if strings.TrimSpace(persona) == "" {
		persona = prompts.ChatPersona()
	}
	persona = strings.NewReplacer(
		"{{FAQ_LINK}}", faqLink,
		"{{SUPPORT_LINK}}", a.supportURL,
	).Replace(persona)

	user := strings.NewReplacer(
		"{message}", req.Message,
		"{context}", RenderContext(selected),
		"{faq_link}", faqLink,
	).Replace(prompts.ChatUser())

	return []types.AgentMessage{
		{Role: "system", Content: persona},
		{Role: "user", Content: user},
	}
}

// Answer returns the model's trimmed reply. Retrieval never fails; an empty
// corpus still reaches the model with a "없음" context.
func (a *Answerer) Answer(ctx context.Context, req AnswerRequest) (answer string, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		metrics.ChatbotAnswers.WithLabelValues(outcome).Inc()
	}()

	if strings.TrimSpace(req.Message) == "" {
		return "", apperrors.Validation("message is required")
	}

	messages := a.BuildAnswerMessages(req)
	a.logger.Debug("Answering chatbot message",
		zap.String("tenant", req.TenantKey),
		zap.Int("faqs", len(req.FAQs)),
		zap.Int("prompt_chars", len(messages[1].Content)))

	content, err := a.completer.Complete(ctx, messages)
	if err != nil {
		if _, ok := apperrors.AsLLMError(err); ok {
			return "", err
		}
		return "", apperrors.LLMBadGateway("answer call failed", err)
	}

	answer = strings.TrimSpace(content)
	if answer == "" {
		return "", apperrors.LLMBadGateway("answer was empty", nil)
	}
	return answer, nil
}
