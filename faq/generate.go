package faq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"capychat/config"
	apperrors "capychat/errors"
	"capychat/metrics"
	"capychat/web/types"

	"go.uber.org/zap"
)

// GenerationStore is the persistence the generator needs. InsertFAQs must
// be atomic: either every candidate is stored or none is.
type GenerationStore interface {
	ListCategories(ctx context.Context, tenantID int64) ([]types.Category, error)
	ListFAQTitles(ctx context.Context, tenantID int64) ([]string, error)
	CountFAQs(ctx context.Context, tenantID int64) (int, error)
	InsertFAQs(ctx context.Context, tenantID int64, candidates []types.FAQCandidate) ([]types.FAQArticle, error)
}

// Stage is a step of one generation run.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageExtracting  Stage = "extracting"
	StageReconciling Stage = "reconciling"
	StageFiltering   Stage = "filtering"
	StagePersisting  Stage = "persisting"
)

// Description is the admin-facing explanation of a failure at this stage.
func (s Stage) Description() string {
	switch s {
	case StageValidating:
		return "입력 텍스트가 비어 있습니다."
	case StageExtracting:
		return "LLM에서 FAQ를 추출하지 못했습니다."
	case StageReconciling:
		return "카테고리 목록을 불러오지 못했습니다."
	case StagePersisting:
		return "FAQ를 저장하지 못했습니다."
	default:
		return "FAQ 생성 중 오류가 발생했습니다."
	}
}

// GenerateError records which stage a generation run failed in.
type GenerateError struct {
	Stage Stage
	Err   error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("faq generation failed while %s: %v", e.Stage, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// GenerateResult summarizes one generation run.
type GenerateResult struct {
	Items             []types.FAQArticle `json:"items"`
	AddedCount        int                `json:"added_count"`
	SkippedDuplicates int                `json:"skipped_duplicates"`
	TotalAfter        int                `json:"total_after"`
}

// Generator turns a raw support transcript into stored FAQ rows.
type Generator struct {
	completer              Completer
	store                  GenerationStore
	logger                 *zap.Logger
	confidenceThreshold    float64
	categoryMatchThreshold float64
	duplicateThreshold     float64
}

func NewGenerator(cfg *config.Config, completer Completer, store GenerationStore, logger *zap.Logger) *Generator {
	return &Generator{
		completer:              completer,
		store:                  store,
		logger:                 logger,
		confidenceThreshold:    cfg.LLMConfidenceThreshold,
		categoryMatchThreshold: cfg.CategoryMatchThreshold,
		duplicateThreshold:     cfg.DuplicateSimilarityThreshold,
	}
}

// Generate runs Validating -> Extracting -> Normalizing -> Reconciling ->
// Filtering -> Persisting. Candidates keep the extractor's order. Failures
// come back as *GenerateError; nothing is retried here.
func (g *Generator) Generate(ctx context.Context, tenantID int64, rawText, defaultCategory string) (result *GenerateResult, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			var genErr *GenerateError
			if errors.As(err, &genErr) {
				outcome = string(genErr.Stage)
			}
		}
		metrics.FAQGenerations.WithLabelValues(outcome).Inc()
		metrics.FAQGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(rawText) == "" {
		return nil, &GenerateError{Stage: StageValidating, Err: apperrors.Validation("raw_text is required")}
	}

	categories, err := g.store.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, &GenerateError{Stage: StageReconciling, Err: err}
	}

	g.logger.Info("Extracting FAQs from transcript",
		zap.Int64("tenant_id", tenantID),
		zap.Int("chars", len(rawText)),
		zap.Int("existing_categories", len(categories)))

	rawItems, err := Extract(ctx, g.completer, rawText)
	if err != nil {
		return nil, &GenerateError{Stage: StageExtracting, Err: err}
	}

	candidates := Normalize(rawItems, defaultCategory)

	for i := range candidates {
		choice := PickCategory(candidates[i].Category, defaultCategory, categories, g.categoryMatchThreshold)
		candidates[i].Category = choice.Name
		candidates[i].CategoryID = choice.ID
	}

	toInsert := g.filterByConfidence(candidates)

	skipped := 0
	if g.duplicateThreshold > 0 && len(toInsert) > 0 {
		toInsert, skipped, err = g.dropDuplicates(ctx, tenantID, toInsert)
		if err != nil {
			return nil, &GenerateError{Stage: StageFiltering, Err: err}
		}
	}

	g.logger.Debug("FAQ candidates prepared",
		zap.Int("extracted", len(rawItems)),
		zap.Int("accepted", len(toInsert)),
		zap.Int("skipped_duplicates", skipped),
		zap.Float64("confidence_threshold", g.confidenceThreshold))

	if len(toInsert) == 0 {
		total, err := g.store.CountFAQs(ctx, tenantID)
		if err != nil {
			return nil, &GenerateError{Stage: StagePersisting, Err: err}
		}
		return &GenerateResult{Items: []types.FAQArticle{}, SkippedDuplicates: skipped, TotalAfter: total}, nil
	}

	created, err := g.store.InsertFAQs(ctx, tenantID, toInsert)
	if err != nil {
		return nil, &GenerateError{Stage: StagePersisting, Err: err}
	}

	total, err := g.store.CountFAQs(ctx, tenantID)
	if err != nil {
		return nil, &GenerateError{Stage: StagePersisting, Err: err}
	}

	metrics.FAQGeneratedItems.Add(float64(len(created)))
	g.logger.Info("Stored generated FAQs",
		zap.Int64("tenant_id", tenantID),
		zap.Int("added", len(created)),
		zap.Int("total_after", total))

	return &GenerateResult{
		Items:             created,
		AddedCount:        len(created),
		SkippedDuplicates: skipped,
		TotalAfter:        total,
	}, nil
}

// filterByConfidence keeps candidates with no confidence or one at or above the threshold.
func (g *Generator) filterByConfidence(candidates []types.FAQCandidate) []types.FAQCandidate {
	kept := make([]types.FAQCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence == nil || *c.Confidence >= g.confidenceThreshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// dropDuplicates skips candidates whose title is too close to a stored FAQ
// title or to a title already accepted from this batch.
func (g *Generator) dropDuplicates(ctx context.Context, tenantID int64, candidates []types.FAQCandidate) ([]types.FAQCandidate, int, error) {
	seen, err := g.store.ListFAQTitles(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	kept := make([]types.FAQCandidate, 0, len(candidates))
	skipped := 0
	for _, c := range candidates {
		if isDuplicateTitle(c.Title, seen, g.duplicateThreshold) {
			skipped++
			continue
		}
		kept = append(kept, c)
		seen = append(seen, c.Title)
	}
	return kept, skipped, nil
}

func isDuplicateTitle(title string, seen []string, threshold float64) bool {
	for _, s := range seen {
		if SimilarityScore(title, s) >= threshold {
			return true
		}
	}
	return false
}
