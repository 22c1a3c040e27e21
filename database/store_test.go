package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	apperrors "capychat/errors"
	"capychat/web/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var faqRowColumns = []string{"id", "tenant_id", "title", "content", "category", "category_id", "media", "source_type", "confidence", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, zap.NewNop()), mock
}

func TestGetTenantByKey(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, key FROM tenants WHERE key = \$1`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key"}).AddRow(int64(3), "shop"))
	mock.ExpectQuery(`SELECT id, key FROM tenants WHERE key = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	tenant, err := store.GetTenantByKey(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, &types.Tenant{ID: 3, Key: "shop"}, tenant)

	_, err = store.GetTenantByKey(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaSeedsDefaultTenant(t *testing.T) {
	store, mock := newMockStore(t)

	for i := 0; i < 6; i++ {
		mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`INSERT INTO tenants \(key\) VALUES \(\$1\) ON CONFLICT \(key\) DO NOTHING`).
		WithArgs("default").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.EnsureSchema(context.Background(), "default"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertFAQsSingleTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	categoryID := int64(4)
	confidence := 0.8

	candidates := []types.FAQCandidate{
		{Title: "배송은 얼마나 걸려요?", Content: "2~3일", Category: "배송", CategoryID: &categoryID, Confidence: &confidence, SourceType: types.SourceLLMImport},
		{Title: "환불", Content: "마이페이지", Category: "환불", SourceType: types.SourceLLMImport},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO faq_articles`).
		WithArgs(int64(1), "배송은 얼마나 걸려요?", "2~3일", "배송", categoryID, "[]", types.SourceLLMImport, confidence).
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(10), int64(1), "배송은 얼마나 걸려요?", "2~3일", "배송", categoryID, []byte("[]"), types.SourceLLMImport, confidence, now, now))
	mock.ExpectQuery(`INSERT INTO faq_articles`).
		WithArgs(int64(1), "환불", "마이페이지", "환불", nil, "[]", types.SourceLLMImport, nil).
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(11), int64(1), "환불", "마이페이지", "환불", nil, []byte("[]"), types.SourceLLMImport, nil, now, now))
	mock.ExpectCommit()

	created, err := store.InsertFAQs(context.Background(), 1, candidates)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(10), created[0].ID)
	assert.Equal(t, "배송", *created[0].Category)
	assert.Equal(t, categoryID, *created[0].CategoryID)
	assert.Equal(t, int64(11), created[1].ID)
	assert.Nil(t, created[1].CategoryID)
	assert.Nil(t, created[1].Confidence)
	assert.NotNil(t, created[1].Media)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertFAQsRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO faq_articles`).
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(10), int64(1), "a", "1", "일반", nil, []byte("[]"), types.SourceLLMImport, nil, now, now))
	mock.ExpectQuery(`INSERT INTO faq_articles`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.InsertFAQs(context.Background(), 1, []types.FAQCandidate{
		{Title: "a", Content: "1", Category: "일반", SourceType: types.SourceLLMImport},
		{Title: "b", Content: "2", Category: "일반", SourceType: types.SourceLLMImport},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsDatabaseOperation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFAQsFilters(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	media := []byte(`[{"kind":"video","url":"https://v.example.com/1"}]`)

	mock.ExpectQuery(`SELECT .+ FROM faq_articles\s+WHERE tenant_id = \$1`).
		WithArgs(int64(1), `50\%`, "배송").
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(2), int64(1), "50% 할인", "내용", "배송", nil, media, types.SourceManual, nil, now, now))

	items, err := store.ListFAQs(context.Background(), 1, types.FAQFilter{Query: " 50% ", Category: "배송"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Media, 1)
	assert.Equal(t, types.MediaVideo, items[0].Media[0].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFAQClearsCategory(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	title := "새 제목"
	empty := ""

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE faq_articles SET updated_at = NOW\(\), title = \$1, category = \$2, category_id = \$3 WHERE id = \$4 AND tenant_id = \$5 RETURNING`).
		WithArgs("새 제목", nil, nil, int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(9), int64(1), "새 제목", "내용", nil, nil, []byte("[]"), types.SourceManual, nil, now, now))
	mock.ExpectCommit()

	updated, err := store.UpdateFAQ(context.Background(), 1, 9, types.FAQUpdate{Title: &title, Category: &empty})
	require.NoError(t, err)
	assert.Equal(t, "새 제목", updated.Title)
	assert.Nil(t, updated.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFAQResolvesCategoryByName(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	category := "배송"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM categories WHERE tenant_id = \$1 AND name = \$2`).
		WithArgs(int64(1), "배송").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectQuery(`UPDATE faq_articles SET updated_at = NOW\(\), category = \$1, category_id = \$2 WHERE id = \$3 AND tenant_id = \$4`).
		WithArgs("배송", int64(4), int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(9), int64(1), "t", "c", "배송", int64(4), []byte("[]"), types.SourceManual, nil, now, now))
	mock.ExpectCommit()

	updated, err := store.UpdateFAQ(context.Background(), 1, 9, types.FAQUpdate{Category: &category})
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, int64(4), *updated.CategoryID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFAQOtherTenant(t *testing.T) {
	store, mock := newMockStore(t)
	content := "x"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE faq_articles`).
		WithArgs("x", int64(9), int64(2)).
		WillReturnRows(sqlmock.NewRows(faqRowColumns))
	mock.ExpectRollback()

	_, err := store.UpdateFAQ(context.Background(), 2, 9, types.FAQUpdate{Content: &content})
	assert.True(t, apperrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFAQ(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM faq_articles WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM faq_articles WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(int64(3), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteFAQ(context.Background(), 1, 3))
	assert.True(t, apperrors.IsNotFound(store.DeleteFAQ(context.Background(), 2, 3)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFAQs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM faq_articles WHERE tenant_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.DeleteFAQs(context.Background(), 1, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.DeleteFAQs(context.Background(), 1, nil)
	assert.True(t, apperrors.IsInvalidInput(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAndTitles(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM faq_articles WHERE tenant_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT title FROM faq_articles WHERE tenant_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("a").AddRow("b"))

	n, err := store.CountFAQs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	titles, err := store.ListFAQTitles(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFAQProjections(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, title, content, category FROM faq_articles WHERE tenant_id = \$1 ORDER BY id ASC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "category"}).
			AddRow(int64(1), "a", "x", "배송").
			AddRow(int64(2), "b", "y", nil))

	got, err := store.ListFAQProjections(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "배송", *got[0].Category)
	assert.Nil(t, got[1].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFAQValidation(t *testing.T) {
	store, mock := newMockStore(t)
	_, err := store.CreateFAQ(context.Background(), 1, types.FAQCandidate{Title: "제목"})
	assert.True(t, apperrors.IsInvalidInput(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFAQUnknownCategoryStaysUnlinked(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM categories`).
		WithArgs(int64(1), "신규").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO faq_articles`).
		WithArgs(int64(1), "제목", "내용", "신규", nil, "[]", types.SourceManual, nil).
		WillReturnRows(sqlmock.NewRows(faqRowColumns).
			AddRow(int64(20), int64(1), "제목", "내용", "신규", nil, []byte("[]"), types.SourceManual, nil, now, now))
	mock.ExpectCommit()

	created, err := store.CreateFAQ(context.Background(), 1, types.FAQCandidate{Title: "제목", Content: "내용", Category: "신규"})
	require.NoError(t, err)
	assert.Nil(t, created.CategoryID)
	assert.Equal(t, "신규", *created.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}
