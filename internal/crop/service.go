package crop

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/agripredict/service-api/internal/crop/entity"
	croprepo "github.com/agripredict/service-api/internal/crop/repo"
	"github.com/agripredict/service-api/pkg/utilities"
)

var ErrBadCSV = errors.New("csv missing required columns")

// requiredColumns of a bulk-analysis CSV, matching the training dataset.
var requiredColumns = []string{"N", "P", "K", "temperature", "humidity", "ph", "rainfall"}

// Service produces crop recommendations. When Endpoint is configured, each
// single recommendation is proxied to the external model service; otherwise
// the built-in threshold rules answer. The model itself is opaque to us.
type Service struct {
	repo     *croprepo.PredictionRepo
	client   *http.Client
	endpoint string
	logger   *zap.SugaredLogger
}

func NewService(db *sqlx.DB, r *croprepo.PredictionRepo, endpoint string, timeout time.Duration, logger *zap.SugaredLogger) *Service {
	if r == nil {
		r = croprepo.NewPredictionRepo(db)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		repo:     r,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		logger:   logger,
	}
}

// classify applies the fallback threshold rules.
func classify(s entity.SoilSample) string {
	switch {
	case s.Nitrogen > 80 && s.Phosphorus > 40 && s.Potassium > 40:
		return "Rice"
	case s.Nitrogen > 60 && s.Temperature > 20:
		return "Maize"
	case s.PH < 6:
		return "Cotton"
	default:
		return "Wheat"
	}
}

type modelResponse struct {
	Crop    string `json:"crop"`
	Message string `json:"message"`
}

// Recommend returns the crop for one sample and records the prediction,
// associated with the account when one is signed in.
func (s *Service) Recommend(ctx context.Context, sample entity.SoilSample, accountID *int64) (*entity.Prediction, string, error) {
	crop := ""
	message := ""
	if s.endpoint != "" {
		resp, err := s.callModel(ctx, sample)
		if err != nil {
			return nil, "", fmt.Errorf("model service: %w", err)
		}
		crop, message = resp.Crop, resp.Message
	} else {
		crop = classify(sample)
	}
	if message == "" {
		message = fmt.Sprintf("%s is the best crop to be cultivated right there", crop)
	}

	p := &entity.Prediction{
		ID:          utilities.NewSnowflakeID(),
		AccountID:   accountID,
		Nitrogen:    sample.Nitrogen,
		Phosphorus:  sample.Phosphorus,
		Potassium:   sample.Potassium,
		Temperature: sample.Temperature,
		Humidity:    sample.Humidity,
		PH:          sample.PH,
		Rainfall:    sample.Rainfall,
		Crop:        crop,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		// the recommendation itself succeeded; history is best effort
		s.logger.Warnw("persist prediction failed", "err", err)
	}
	return p, message, nil
}

func (s *Service) callModel(ctx context.Context, sample entity.SoilSample) (*modelResponse, error) {
	body, err := json.Marshal(sample)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out modelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Crop == "" {
		return nil, errors.New("empty crop in model response")
	}
	return &out, nil
}

// BulkResult summarizes a bulk CSV analysis.
type BulkResult struct {
	TotalSamples    int            `json:"totalSamples"`
	Recommendations map[string]int `json:"recommendations"`
	Percentages     map[string]int `json:"percentages"`
}

// AnalyzeCSV classifies every row of a CSV with columns
// N,P,K,temperature,humidity,ph,rainfall and aggregates per-crop counts.
// Rows with unparsable numbers are skipped.
func (s *Service) AnalyzeCSV(r io.Reader) (*BulkResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrBadCSV
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadCSV, col)
		}
	}

	counts := map[string]int{}
	total := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		sample, ok := sampleFromRecord(record, idx)
		if !ok {
			continue
		}
		counts[classify(sample)]++
		total++
	}

	percentages := map[string]int{}
	if total > 0 {
		for crop, n := range counts {
			percentages[crop] = int(float64(n)/float64(total)*100 + 0.5)
		}
	}
	return &BulkResult{TotalSamples: total, Recommendations: counts, Percentages: percentages}, nil
}

func sampleFromRecord(record []string, idx map[string]int) (entity.SoilSample, bool) {
	get := func(col string) (float64, bool) {
		i := idx[col]
		if i >= len(record) {
			return 0, false
		}
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	var s entity.SoilSample
	var ok bool
	if s.Nitrogen, ok = get("N"); !ok {
		return s, false
	}
	if s.Phosphorus, ok = get("P"); !ok {
		return s, false
	}
	if s.Potassium, ok = get("K"); !ok {
		return s, false
	}
	if s.Temperature, ok = get("temperature"); !ok {
		return s, false
	}
	if s.Humidity, ok = get("humidity"); !ok {
		return s, false
	}
	if s.PH, ok = get("ph"); !ok {
		return s, false
	}
	if s.Rainfall, ok = get("rainfall"); !ok {
		return s, false
	}
	return s, true
}

// History returns the account's recent predictions, newest first.
func (s *Service) History(ctx context.Context, accountID int64, limit int) ([]*entity.Prediction, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByAccount(ctx, accountID, limit)
}
