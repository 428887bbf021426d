package learning

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewService(sqlx.NewDb(mockDB, "postgres"), nil), mock
}

var tipRows = []string{"id", "title", "content", "image", "video_url", "pdf", "audio", "reference_link", "category", "created_at", "updated_at"}

func tipRow(id, title, category string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(tipRows).AddRow(id, title, "some content", "", "", "", "", "", category, now, now)
}

func strPtr(s string) *string { return &s }

func TestCreateRequiresTitleAndCategory(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name string
		in   TipInput
	}{
		{"no title", TipInput{Category: strPtr("soil")}},
		{"no category", TipInput{Title: strPtr("Crop rotation")}},
		{"whitespace title", TipInput{Title: strPtr("   "), Category: strPtr("soil")}},
		{"empty input", TipInput{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateAssignsIDAndTrims(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectExec("INSERT INTO learning_tips").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tip, err := svc.Create(context.Background(), TipInput{
		Title:    strPtr("  Crop rotation  "),
		Category: strPtr(" soil "),
		Content:  strPtr("rotate legumes with cereals"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tip.ID)
	assert.Equal(t, "Crop rotation", tip.Title)
	assert.Equal(t, "soil", tip.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByCategoryEmptyIsNotFound(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery("SELECT (.+) FROM learning_tips WHERE category=").
		WithArgs("nothing-here").
		WillReturnRows(sqlmock.NewRows(tipRows))

	_, err := svc.ByCategory(context.Background(), "nothing-here")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestByCategoryReturnsTips(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery("SELECT (.+) FROM learning_tips WHERE category=").
		WithArgs("soil").
		WillReturnRows(tipRow("t1", "Crop rotation", "soil"))

	tips, err := svc.ByCategory(context.Background(), "soil")
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, "Crop rotation", tips[0].Title)
}

func TestUpdateMissingTip(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery("SELECT (.+) FROM learning_tips WHERE id=").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(tipRows))

	_, err := svc.Update(context.Background(), "nope", TipInput{Title: strPtr("New")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery("SELECT (.+) FROM learning_tips WHERE id=").
		WithArgs("t1").
		WillReturnRows(tipRow("t1", "Crop rotation", "soil"))
	mock.ExpectExec("UPDATE learning_tips SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tip, err := svc.Update(context.Background(), "t1", TipInput{Title: strPtr("Cover crops")})
	require.NoError(t, err)
	assert.Equal(t, "Cover crops", tip.Title)
	assert.Equal(t, "soil", tip.Category)
	assert.Equal(t, "some content", tip.Content)
}

// Blanking the title on update is an error, same as on create.
func TestUpdateCannotBlankTitle(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery("SELECT (.+) FROM learning_tips WHERE id=").
		WithArgs("t1").
		WillReturnRows(tipRow("t1", "Crop rotation", "soil"))

	_, err := svc.Update(context.Background(), "t1", TipInput{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteMissingTip(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectExec("DELETE FROM learning_tips WHERE id=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, svc.Delete(context.Background(), "nope"), ErrNotFound)
}
