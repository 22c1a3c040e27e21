package faq

import (
	"context"
	"sync"

	"capychat/web/types"
)

// fakeCompleter returns a canned reply and records every call.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages [][]types.AgentMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []types.AgentMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, messages)
	return f.reply, f.err
}

// fakeStore is an in-memory GenerationStore for one tenant.
type fakeStore struct {
	categories  []types.Category
	titles      []string
	count       int
	nextID      int64
	inserted    [][]types.FAQCandidate
	categoryErr error
	insertErr   error
	countErr    error
	countCalls  int
}

func (s *fakeStore) ListCategories(context.Context, int64) ([]types.Category, error) {
	return s.categories, s.categoryErr
}

func (s *fakeStore) ListFAQTitles(context.Context, int64) ([]string, error) {
	return s.titles, nil
}

func (s *fakeStore) CountFAQs(context.Context, int64) (int, error) {
	s.countCalls++
	return s.count, s.countErr
}

func (s *fakeStore) InsertFAQs(_ context.Context, tenantID int64, candidates []types.FAQCandidate) ([]types.FAQArticle, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.inserted = append(s.inserted, candidates)
	out := make([]types.FAQArticle, 0, len(candidates))
	for _, c := range candidates {
		s.nextID++
		category := c.Category
		out = append(out, types.FAQArticle{
			ID:         s.nextID,
			TenantID:   tenantID,
			Title:      c.Title,
			Content:    c.Content,
			Category:   &category,
			CategoryID: c.CategoryID,
			Media:      c.Media,
			SourceType: c.SourceType,
			Confidence: c.Confidence,
		})
		s.titles = append(s.titles, c.Title)
	}
	s.count += len(candidates)
	return out, nil
}
