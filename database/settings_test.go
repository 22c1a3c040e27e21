package database

import (
	"context"
	"errors"
	"testing"

	apperrors "capychat/errors"
	"capychat/web/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetChatSettingsMissingKeysAreEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT key, value FROM site_config WHERE tenant_id = \$1 AND key = ANY\(\$2\)`).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).AddRow("chat.headerText", "상담봇"))

	settings, err := store.GetChatSettings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, types.ChatSettings{HeaderText: "상담봇"}, settings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateChatSettingsOnlyProvidedFields(t *testing.T) {
	store, mock := newMockStore(t)
	prompt := "친절하게"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO site_config`).
		WithArgs(int64(1), "chat.systemPrompt", "친절하게").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.UpdateChatSettings(context.Background(), 1, types.ChatSettingsUpdate{SystemPrompt: &prompt}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateChatSettingsRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	header, thumb := "h", "https://img.example.com/a.png"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO site_config`).
		WithArgs(int64(1), "chat.headerText", "h").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO site_config`).
		WithArgs(int64(1), "chat.thumbnailUrl", thumb).
		WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	err := store.UpdateChatSettings(context.Background(), 1, types.ChatSettingsUpdate{HeaderText: &header, ThumbnailURL: &thumb})
	assert.True(t, apperrors.IsDatabaseOperation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameCategoryRelabelsFAQs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE categories SET name = \$1 WHERE id = \$2 AND tenant_id = \$3 RETURNING name`).
		WithArgs("반품", int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("반품"))
	mock.ExpectExec(`UPDATE faq_articles SET category = \$1`).
		WithArgs("반품", int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	c, err := store.RenameCategory(context.Background(), 1, 4, " 반품 ")
	require.NoError(t, err)
	assert.Equal(t, types.Category{ID: 4, TenantID: 1, Name: "반품"}, *c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameCategoryOtherTenant(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE categories`).
		WithArgs("반품", int64(4), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectRollback()

	_, err := store.RenameCategory(context.Background(), 2, 4, "반품")
	assert.True(t, apperrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCRUD(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO categories \(tenant_id, name\) VALUES \(\$1, \$2\) RETURNING id`).
		WithArgs(int64(1), "배송").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectQuery(`SELECT id, tenant_id, name FROM categories WHERE tenant_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}).AddRow(int64(8), int64(1), "배송"))
	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(int64(8), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM categories`).
		WithArgs(int64(8), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.CreateCategory(context.Background(), 1, "  ")
	assert.True(t, apperrors.IsInvalidInput(err))

	created, err := store.CreateCategory(context.Background(), 1, "배송")
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)

	list, err := store.ListCategories(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []types.Category{{ID: 8, TenantID: 1, Name: "배송"}}, list)

	require.NoError(t, store.DeleteCategory(context.Background(), 1, 8))
	assert.True(t, apperrors.IsNotFound(store.DeleteCategory(context.Background(), 1, 8)))
	require.NoError(t, mock.ExpectationsWereMet())
}
