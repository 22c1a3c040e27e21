package types

import (
	"time"
)

// AgentMessage represents a message in the chat-completions format.
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Source types recorded on FAQ rows.
const (
	SourceLLMImport = "llm_import"
	SourceManual    = "manual"
)

// Media kinds accepted on FAQ attachments.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Media is an image or video attached to an FAQ answer.
type Media struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// Tenant is an isolated customer or channel.
type Tenant struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

// Category is a tenant's canonical FAQ category.
type Category struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
}

// FAQCandidate is a normalized extraction result that has not been stored yet.
type FAQCandidate struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	CategoryID *int64   `json:"category_id"`
	Confidence *float64 `json:"confidence"`
	SourceType string   `json:"source_type"`
	Media      []Media  `json:"media"`
}

// FAQArticle is a persisted, tenant-owned FAQ row.
type FAQArticle struct {
	ID         int64     `json:"id"`
	TenantID   int64     `json:"tenant_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   *string   `json:"category"`
	CategoryID *int64    `json:"category_id"`
	Media      []Media   `json:"media"`
	SourceType string    `json:"source_type"`
	Confidence *float64  `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Projection returns the subset of the article used for retrieval.
func (a FAQArticle) Projection() FAQProjection {
	return FAQProjection{ID: a.ID, Title: a.Title, Content: a.Content, Category: a.Category}
}

// FAQProjection is what retrieval needs from an article.
type FAQProjection struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category"`
}

// FAQUpdate carries a partial admin edit. Nil fields are left untouched;
// a non-nil empty Category clears the category.
type FAQUpdate struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Category *string  `json:"category"`
	Media    *[]Media `json:"media"`
}

// FAQFilter narrows a list query.
type FAQFilter struct {
	Query    string
	Category string
}

// ChatSettings are the per-tenant chat widget settings.
type ChatSettings struct {
	HeaderText   string `json:"headerText"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SystemPrompt string `json:"systemPrompt"`
}

// ChatSettingsUpdate carries only the fields the admin submitted.
type ChatSettingsUpdate struct {
	HeaderText   *string `json:"headerText"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	SystemPrompt *string `json:"systemPrompt"`
}

// Empty reports whether no field was provided.
func (u ChatSettingsUpdate) Empty() bool {
	return u.HeaderText == nil && u.ThumbnailURL == nil && u.SystemPrompt == nil
}
