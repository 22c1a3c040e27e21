package faq

import (
	"fmt"
	"sort"
	"strings"

	"capychat/web/types"
)

// SubstringBoost is added once when the whole message appears in the title
// and once more when it appears in the content. Scores are a ranking
// signal and may exceed 1.
const SubstringBoost = 0.4

// NoContextPlaceholder is rendered when there are no FAQs to show the model.
const NoContextPlaceholder = "없음"

const uncategorizedLabel = "미지정"

// Scored is a retrieval candidate.
type Scored struct {
	types.FAQProjection
	Score float64
}

// RetrievalOptions sizes the context window.
type RetrievalOptions struct {
	// LowScore is the top score under which the broad window is used.
	LowScore  float64
	TopK      int
	BroadTopK int
}

// DefaultRetrievalOptions returns the stock window: 6 candidates, or 12 when the best score is under 0.2.
func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{LowScore: 0.2, TopK: 6, BroadTopK: 12}
}

// ScoreFAQ rates one FAQ against the user's message.
func ScoreFAQ(message string, f types.FAQProjection) float64 {
	best := max(SimilarityScore(message, f.Title), SimilarityScore(message, f.Content))
	if f.Category != nil {
		best = max(best, SimilarityScore(message, *f.Category))
	}

	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return best
	}
	if strings.Contains(strings.ToLower(f.Title), msg) {
		best += SubstringBoost
	}
	if strings.Contains(strings.ToLower(f.Content), msg) {
		best += SubstringBoost
	}
	return best
}

// Rank scores every FAQ and sorts descending; equal scores keep input order.
func Rank(message string, faqs []types.FAQProjection) []Scored {
	scored := make([]Scored, len(faqs))
	for i, f := range faqs {
		scored[i] = Scored{FAQProjection: f, Score: ScoreFAQ(message, f)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// SelectWindow takes the top candidates of a ranked list. A weak best match
// widens the window to favour recall.
func SelectWindow(ranked []Scored, opts RetrievalOptions) []Scored {
	if len(ranked) == 0 {
		return nil
	}
	limit := opts.TopK
	if ranked[0].Score < opts.LowScore {
		limit = opts.BroadTopK
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	return ranked[:limit]
}

// RenderContext formats the selected FAQs for the answer prompt.
func RenderContext(selected []Scored) string {
	if len(selected) == 0 {
		return NoContextPlaceholder
	}
	blocks := make([]string, len(selected))
	for i, s := range selected {
		category := uncategorizedLabel
		if s.Category != nil && *s.Category != "" {
			category = *s.Category
		}
		blocks[i] = fmt.Sprintf("#%d [카테고리:%s] Q: %s\nA: %s", i+1, category, s.Title, s.Content)
	}
	return strings.Join(blocks, "\n\n")
}
