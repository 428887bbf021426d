package crop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agripredict/service-api/internal/crop/entity"
)

func newTestService(t *testing.T, endpoint string) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")
	return NewService(db, nil, endpoint, time.Second, zap.NewNop().Sugar()), mock
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		name   string
		sample entity.SoilSample
		want   string
	}{
		{"high NPK", entity.SoilSample{Nitrogen: 90, Phosphorus: 45, Potassium: 45, Temperature: 25, PH: 7}, "Rice"},
		{"high N warm", entity.SoilSample{Nitrogen: 70, Phosphorus: 10, Potassium: 10, Temperature: 25, PH: 7}, "Maize"},
		{"acidic soil", entity.SoilSample{Nitrogen: 10, Phosphorus: 10, Potassium: 10, Temperature: 15, PH: 5.5}, "Cotton"},
		{"default", entity.SoilSample{Nitrogen: 10, Phosphorus: 10, Potassium: 10, Temperature: 15, PH: 7}, "Wheat"},
		// boundary values are exclusive
		{"N exactly 80", entity.SoilSample{Nitrogen: 80, Phosphorus: 45, Potassium: 45, Temperature: 15, PH: 7}, "Maize"},
		{"ph exactly 6", entity.SoilSample{Nitrogen: 10, Phosphorus: 10, Potassium: 10, Temperature: 15, PH: 6}, "Wheat"},
		// rule order: rice wins over maize when both match
		{"rice before maize", entity.SoilSample{Nitrogen: 90, Phosphorus: 45, Potassium: 45, Temperature: 30, PH: 5}, "Rice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.sample))
		})
	}
}

func TestRecommendFallbackRules(t *testing.T) {
	svc, mock := newTestService(t, "")
	mock.ExpectExec("INSERT INTO crop_predictions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, msg, err := svc.Recommend(context.Background(), entity.SoilSample{
		Nitrogen: 90, Phosphorus: 45, Potassium: 45, Temperature: 25, Humidity: 80, PH: 6.5, Rainfall: 200,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Rice", p.Crop)
	assert.Equal(t, "Rice is the best crop to be cultivated right there", msg)
	assert.Nil(t, p.AccountID)
	assert.NotZero(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendProxiesToModelService(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"crop":"Chickpea","message":"Chickpea suits this soil"}`))
	}))
	defer model.Close()

	svc, mock := newTestService(t, model.URL)
	mock.ExpectExec("INSERT INTO crop_predictions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	accountID := int64(42)
	p, msg, err := svc.Recommend(context.Background(), entity.SoilSample{Nitrogen: 10}, &accountID)
	require.NoError(t, err)
	assert.Equal(t, "Chickpea", p.Crop)
	assert.Equal(t, "Chickpea suits this soil", msg)
	require.NotNil(t, p.AccountID)
	assert.Equal(t, int64(42), *p.AccountID)
}

func TestRecommendModelServiceDown(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer model.Close()

	svc, _ := newTestService(t, model.URL)
	_, _, err := svc.Recommend(context.Background(), entity.SoilSample{}, nil)
	assert.Error(t, err)
}

// A failed history insert must not fail the recommendation.
func TestRecommendSurvivesPersistFailure(t *testing.T) {
	svc, mock := newTestService(t, "")
	mock.ExpectExec("INSERT INTO crop_predictions").
		WillReturnError(assert.AnError)

	p, _, err := svc.Recommend(context.Background(), entity.SoilSample{PH: 7, Temperature: 15}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Wheat", p.Crop)
}

const sampleCSV = `N,P,K,temperature,humidity,ph,rainfall
90,45,45,25,80,6.5,200
70,10,10,25,60,7,100
10,10,10,15,50,5.5,80
10,10,10,15,50,7,80
`

func TestAnalyzeCSV(t *testing.T) {
	svc, _ := newTestService(t, "")

	res, err := svc.AnalyzeCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalSamples)
	assert.Equal(t, map[string]int{"Rice": 1, "Maize": 1, "Cotton": 1, "Wheat": 1}, res.Recommendations)
	assert.Equal(t, 25, res.Percentages["Rice"])
}

func TestAnalyzeCSVMissingColumn(t *testing.T) {
	svc, _ := newTestService(t, "")

	_, err := svc.AnalyzeCSV(strings.NewReader("N,P,K,temperature,humidity,ph\n1,2,3,4,5,6\n"))
	assert.ErrorIs(t, err, ErrBadCSV)
}

func TestAnalyzeCSVSkipsBadRows(t *testing.T) {
	svc, _ := newTestService(t, "")
	csv := "N,P,K,temperature,humidity,ph,rainfall\n" +
		"90,45,45,25,80,6.5,200\n" +
		"oops,45,45,25,80,6.5,200\n"

	res, err := svc.AnalyzeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalSamples)
	assert.Equal(t, 1, res.Recommendations["Rice"])
}

// Column order in the file does not matter, only the header names.
func TestAnalyzeCSVReorderedColumns(t *testing.T) {
	svc, _ := newTestService(t, "")
	csv := "rainfall,ph,humidity,temperature,K,P,N\n" +
		"200,6.5,80,25,45,45,90\n"

	res, err := svc.AnalyzeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Recommendations["Rice"])
}

func TestAnalyzeCSVEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, "")

	_, err := svc.AnalyzeCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrBadCSV)
}

func TestHistoryDefaultsLimit(t *testing.T) {
	svc, mock := newTestService(t, "")
	now := time.Now()
	cols := []string{"id", "account_id", "nitrogen", "phosphorus", "potassium", "temperature", "humidity", "ph", "rainfall", "crop", "created_at"}
	acct := int64(42)
	mock.ExpectQuery("SELECT (.+) FROM crop_predictions WHERE account_id=").
		WithArgs(acct, 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), acct, 90.0, 45.0, 45.0, 25.0, 80.0, 6.5, 200.0, "Rice", now))

	rows, err := svc.History(context.Background(), acct, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rice", rows[0].Crop)
	assert.NoError(t, mock.ExpectationsWereMet())
}
