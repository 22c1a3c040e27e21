package faq

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "capychat/errors"
	"capychat/prompts"
	"capychat/web/types"
)

// Completer is the chat-completion capability used for both extraction and
// answering. Implementations return *errors.LLMError on failure.
type Completer interface {
	Complete(ctx context.Context, messages []types.AgentMessage) (string, error)
}

// RawItem is one loosely-typed record from the extraction response.
type RawItem map[string]any

// responseShape names the top-level layouts accepted from the extractor.
type responseShape int

const (
	shapeUnknown responseShape = iota
	shapeArray
	shapeItems
	shapeQuestions
	shapeSingle
)

func (s responseShape) String() string {
	switch s {
	case shapeArray:
		return "array"
	case shapeItems:
		return "items"
	case shapeQuestions:
		return "questions"
	case shapeSingle:
		return "single"
	default:
		return "unknown"
	}
}

// BuildExtractionMessages renders the fixed extraction instructions around rawText.
func BuildExtractionMessages(rawText string) []types.AgentMessage {
	return []types.AgentMessage{
		{Role: "system", Content: prompts.ExtractionSystem()},
		{Role: "user", Content: strings.ReplaceAll(prompts.ExtractionTemplate(), "{raw_text}", rawText)},
	}
}

// Extract asks the completer for FAQ records and returns them in response
// order. Any transport failure or unusable top-level shape is fatal.
func Extract(ctx context.Context, completer Completer, rawText string) ([]RawItem, error) {
	content, err := completer.Complete(ctx, BuildExtractionMessages(rawText))
	if err != nil {
		if _, ok := apperrors.AsLLMError(err); ok {
			return nil, err
		}
		return nil, apperrors.LLMBadGateway("extraction call failed", err)
	}
	return ParseTopLevelShape(content)
}

// ParseTopLevelShape decodes the extractor's reply and accepts, in order: a
// bare array, {"items": [...]}, {"questions": [...]}, or a single
// {"question", "answer"} object. Anything else is an LLMError with status
// 502. Array members that are not objects are skipped; per-item problems are
// left to the normalizer.
func ParseTopLevelShape(content string) ([]RawItem, error) {
	body := stripCodeFence(content)
	if body == "" {
		return nil, apperrors.LLMBadGateway("extraction response was empty", nil)
	}

	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, apperrors.LLMBadGateway("extraction response is not valid JSON", err)
	}

	shape, list := detectShape(parsed)
	if shape == shapeUnknown {
		return nil, apperrors.LLMBadGateway("extraction response has an unexpected shape", nil)
	}

	items := make([]RawItem, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]any); ok {
			items = append(items, RawItem(obj))
		}
	}
	return items, nil
}

func detectShape(parsed any) (responseShape, []any) {
	if arr, ok := parsed.([]any); ok {
		return shapeArray, arr
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return shapeUnknown, nil
	}
	if arr, ok := obj["items"].([]any); ok {
		return shapeItems, arr
	}
	if arr, ok := obj["questions"].([]any); ok {
		return shapeQuestions, arr
	}
	if truthy(obj["question"]) && truthy(obj["answer"]) {
		return shapeSingle, []any{obj}
	}
	return shapeUnknown, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}
