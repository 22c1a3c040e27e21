package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"capychat/config"
	apperrors "capychat/errors"
	"capychat/metrics"
	"capychat/web/types"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of an upstream error body is logged.
const maxErrorBody = 512

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []types.AgentMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message types.AgentMessage `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint. It never
// retries; every failure is returned as *errors.LLMError.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	// Deadlines come from the per-call context, not the transport.
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Purpose labels calls for metrics and logs ("extraction", "answer").
type Purpose struct {
	client *Client
	name   string
}

// For returns a completer whose calls are recorded under purpose.
func (c *Client) For(purpose string) *Purpose {
	return &Purpose{client: c, name: purpose}
}

func (p *Purpose) Complete(ctx context.Context, messages []types.AgentMessage) (string, error) {
	return p.client.chat(ctx, p.name, messages)
}

// Complete performs one unlabelled chat completion.
func (c *Client) Complete(ctx context.Context, messages []types.AgentMessage) (string, error) {
	return c.chat(ctx, "default", messages)
}

func (c *Client) chat(ctx context.Context, purpose string, messages []types.AgentMessage) (content string, err error) {
	if strings.TrimSpace(c.cfg.OpenAIAPIKey) == "" {
		return "", apperrors.LLMMissingCredentials()
	}

	start := time.Now()
	defer func() {
		outcome := "success"
		if llmErr, ok := apperrors.AsLLMError(err); ok {
			outcome = fmt.Sprintf("%d", llmErr.Status)
		}
		elapsed := time.Since(start)
		metrics.LLMRequestDuration.WithLabelValues(purpose, outcome).Observe(elapsed.Seconds())
		c.logger.Debug("LLM call finished",
			zap.String("purpose", purpose),
			zap.String("model", c.cfg.LLMModel),
			zap.String("outcome", outcome),
			zap.Duration("latency", elapsed))
	}()

	jsonBody, err := json.Marshal(chatRequest{Model: c.cfg.LLMModel, Messages: messages})
	if err != nil {
		return "", apperrors.LLMBadGateway("marshal chat request", err)
	}

	timeout := c.cfg.LLMTimeout
	if timeout <= 0 {
		timeout = time.Duration(c.cfg.LLMTimeoutMS) * time.Millisecond
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url := strings.TrimRight(c.cfg.LLMAPIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", apperrors.LLMBadGateway("create chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	if c.cfg.OpenAIOrgID != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.OpenAIOrgID)
	}
	if c.cfg.OpenAIProjectID != "" {
		req.Header.Set("OpenAI-Project", c.cfg.OpenAIProjectID)
	}

	c.logger.Debug("Sending chat completion",
		zap.String("purpose", purpose),
		zap.String("model", c.cfg.LLMModel),
		zap.Int("prompt_chars", promptSize(messages)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.LLMTimeout(err)
		}
		return "", apperrors.LLMBadGateway("send chat request", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.LLMTimeout(err)
		}
		return "", apperrors.LLMBadGateway("read chat response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(bodyBytes)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		c.logger.Warn("LLM server returned non-2xx",
			zap.String("status", resp.Status),
			zap.String("response", body))
		return "", apperrors.LLMBadGateway(fmt.Sprintf("llm server status %s", resp.Status), nil)
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", apperrors.LLMBadGateway("decode chat response", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", apperrors.LLMBadGateway("empty chat response", nil)
	}
	return cr.Choices[0].Message.Content, nil
}

func promptSize(messages []types.AgentMessage) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
