package faq

import (
	"strconv"
	"strings"

	"capychat/web/types"
)

const (
	// UntitledPlaceholder stands in for a record with no question or title.
	UntitledPlaceholder = "제목 없음"

	// UnsetConfidence replaces extraction confidences <= 0, which models
	// commonly emit to mean "not set".
	UnsetConfidence = 0.6
)

// Normalize maps raw extraction records onto FAQ candidates in order. It
// never fails: missing fields get defaults and malformed media are dropped.
func Normalize(raw []RawItem, defaultCategory string) []types.FAQCandidate {
	out := make([]types.FAQCandidate, 0, len(raw))
	for _, item := range raw {
		out = append(out, normalizeOneCandidate(item, defaultCategory))
	}
	return out
}

func normalizeOneCandidate(item RawItem, defaultCategory string) types.FAQCandidate {
	return types.FAQCandidate{
		Title:      firstNonEmpty(item.text("question"), item.text("title"), UntitledPlaceholder),
		Content:    firstNonEmpty(item.text("answer"), item.text("content")),
		Category:   firstNonEmpty(item.text("category"), strings.TrimSpace(defaultCategory), DefaultCategory),
		Confidence: normalizeConfidence(item["confidence"]),
		SourceType: firstNonEmpty(item.text("source_type"), types.SourceLLMImport),
		Media:      NormalizeMedia(item["media"]),
	}
}

func normalizeConfidence(v any) *float64 {
	c, ok := v.(float64)
	if !ok {
		return nil
	}
	if c <= 0 {
		c = UnsetConfidence
	}
	return &c
}

// NormalizeMedia keeps well-formed attachments: each needs a non-empty url,
// and kind is "video" only when stated explicitly.
func NormalizeMedia(v any) []types.Media {
	list, ok := v.([]any)
	if !ok {
		return []types.Media{}
	}
	media := make([]types.Media, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		url, _ := obj["url"].(string)
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		kind := types.MediaImage
		if k, _ := obj["kind"].(string); k == types.MediaVideo {
			kind = types.MediaVideo
		}
		name, _ := obj["name"].(string)
		media = append(media, types.Media{Kind: kind, URL: url, Name: strings.TrimSpace(name)})
	}
	return media
}

// text returns the trimmed string form of a field. Numbers are formatted;
// any other type reads as absent.
func (r RawItem) text(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
