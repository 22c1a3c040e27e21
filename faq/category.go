package faq

import (
	"strings"

	"capychat/config"
	"capychat/web/types"
)

// DefaultCategory is used when neither the extraction nor the caller names one.
const DefaultCategory = "일반"

// DefaultCategoryMatchThreshold separates "paraphrase of an existing
// category" from "new category". Overridden by CATEGORY_MATCH_THRESHOLD.
const DefaultCategoryMatchThreshold = config.DefaultCategoryMatchThreshold

// CategoryChoice is the outcome of reconciling a suggested label.
// ID is nil when the label did not attach to a stored category.
type CategoryChoice struct {
	ID    *int64
	Name  string
	Score float64
}

// PickCategory maps a suggested label onto the closest existing category.
// When the best similarity reaches threshold the canonical stored name
// replaces the suggestion, so near-duplicate labels converge. Otherwise the
// suggestion is kept as a free-text label; no category row is created.
// A threshold outside (0, 1] falls back to DefaultCategoryMatchThreshold.
func PickCategory(suggested, fallback string, existing []types.Category, threshold float64) CategoryChoice {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultCategoryMatchThreshold
	}
	suggested = strings.TrimSpace(suggested)
	if len(existing) == 0 || suggested == "" {
		return CategoryChoice{Name: firstNonEmpty(suggested, strings.TrimSpace(fallback), DefaultCategory)}
	}

	bestIdx := 0
	bestScore := 0.0
	for i, cat := range existing {
		// strictly greater keeps the first of equal scores
		if score := SimilarityScore(suggested, cat.Name); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestScore >= threshold {
		best := existing[bestIdx]
		id := best.ID
		return CategoryChoice{ID: &id, Name: best.Name, Score: bestScore}
	}
	return CategoryChoice{Name: suggested}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
