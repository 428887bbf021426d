package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("chat api key not configured")

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const systemPreamble = `You are an agricultural expert. Even if no farm summary is provided, give the best general advice based on the question.

Your task is to provide clear, accurate, and relevant answers to agricultural questions based strictly on the provided farm summary below. Keep responses brief and focused unless a more detailed explanation is explicitly requested by the user.

Provide clear, accurate, and practical answers to agricultural questions, tailored to the user's needs and context, while avoiding misinformation.

If the user's question is non-agricultural, politely inform them that you are an agricultural assistant and cannot assist with non-agricultural topics.`

// FarmData is the snapshot of measurements the frontend sends along with a
// question, typically the user's latest recommendation form.
type FarmData struct {
	Nitrogen    float64    `json:"nitrogen"`
	Phosphorus  float64    `json:"phosphorus"`
	Potassium   float64    `json:"potassium"`
	Temperature float64    `json:"temperature"`
	Humidity    float64    `json:"humidity"`
	PH          float64    `json:"ph"`
	Rainfall    float64    `json:"rainfall"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// Service proxies chat questions to an external generative-AI completion
// endpoint. The completion internals are opaque; we only assemble the prompt
// and unwrap the first candidate's text.
type Service struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewService(apiKey, model string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool { return s.apiKey != "" }

// formatFarmSummary renders the measurement snapshot for the prompt.
func formatFarmSummary(d *FarmData) string {
	if d == nil {
		return "No farm summary provided."
	}
	date := "N/A"
	if d.CreatedAt != nil {
		date = d.CreatedAt.Format("2006-01-02")
	}
	return fmt.Sprintf(`Date: %s
- Nitrogen: %g
- Phosphorus: %g
- Potassium: %g
- Temperature: %g°C
- Humidity: %g%%
- pH: %g
- Rainfall: %g mm`,
		date, d.Nitrogen, d.Phosphorus, d.Potassium, d.Temperature, d.Humidity, d.PH, d.Rainfall)
}

func buildPrompt(message string, data *FarmData) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n-------------------------\nFarm Summary:\n")
	b.WriteString(formatFarmSummary(data))
	b.WriteString("\n-------------------------\n\nUser Question:\n")
	b.WriteString(message)
	b.WriteString("\n\nYour Response:\n")
	return b.String()
}

// request/response shapes of the generateContent endpoint
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Reply sends the assembled prompt to the completion endpoint and returns the
// model's text.
func (s *Service) Reply(ctx context.Context, message string, data *FarmData) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: buildPrompt(message, data)}}}},
		GenerationConfig: generationConfig{MaxOutputTokens: 1000},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("chat completion: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
