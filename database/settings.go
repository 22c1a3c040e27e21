package database

import (
	"context"

	"capychat/web/types"

	"github.com/lib/pq"
)

// site_config keys for the chat widget.
const (
	keyChatHeaderText   = "chat.headerText"
	keyChatThumbnailURL = "chat.thumbnailUrl"
	keyChatSystemPrompt = "chat.systemPrompt"
)

// GetChatSettings returns the stored widget settings; missing keys read as "".
func (s *PostgresStore) GetChatSettings(ctx context.Context, tenantID int64) (types.ChatSettings, error) {
	var settings types.ChatSettings
	rows, err := s.DB.QueryContext(ctx,
		`SELECT key, value FROM site_config WHERE tenant_id = $1 AND key = ANY($2)`,
		tenantID, pq.Array([]string{keyChatHeaderText, keyChatThumbnailURL, keyChatSystemPrompt}))
	if err != nil {
		return settings, dbError(err, "load chat settings")
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, dbError(err, "scan chat setting")
		}
		switch key {
		case keyChatHeaderText:
			settings.HeaderText = value
		case keyChatThumbnailURL:
			settings.ThumbnailURL = value
		case keyChatSystemPrompt:
			settings.SystemPrompt = value
		}
	}
	if err := rows.Err(); err != nil {
		return settings, dbError(err, "iterate chat settings")
	}
	return settings, nil
}

// UpdateChatSettings upserts the provided fields in one transaction.
func (s *PostgresStore) UpdateChatSettings(ctx context.Context, tenantID int64, u types.ChatSettingsUpdate) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return dbError(err, "begin chat settings")
	}
	defer tx.Rollback()

	values := []struct {
		key   string
		value *string
	}{
		{keyChatHeaderText, u.HeaderText},
		{keyChatThumbnailURL, u.ThumbnailURL},
		{keyChatSystemPrompt, u.SystemPrompt},
	}
	for _, v := range values {
		if v.value == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO site_config (tenant_id, key, value) VALUES ($1, $2, $3)
			ON CONFLICT (tenant_id, key) DO UPDATE SET value = EXCLUDED.value`,
			tenantID, v.key, *v.value); err != nil {
			return dbError(err, "save chat setting %s", v.key)
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError(err, "commit chat settings")
	}
	return nil
}
