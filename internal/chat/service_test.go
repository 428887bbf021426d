package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyWithoutKey(t *testing.T) {
	svc := NewService("", "gemini-2.0-flash-001", time.Second)

	assert.False(t, svc.Configured())
	_, err := svc.Reply(context.Background(), "when should I plant maize?", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildPromptWithoutFarmData(t *testing.T) {
	prompt := buildPrompt("when should I plant maize?", nil)

	assert.Contains(t, prompt, "You are an agricultural expert")
	assert.Contains(t, prompt, "No farm summary provided.")
	assert.Contains(t, prompt, "User Question:\nwhen should I plant maize?")
}

func TestBuildPromptWithFarmData(t *testing.T) {
	created := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	prompt := buildPrompt("is my soil acidic?", &FarmData{
		Nitrogen: 90, Phosphorus: 45, Potassium: 45,
		Temperature: 25.5, Humidity: 80, PH: 5.5, Rainfall: 200,
		CreatedAt: &created,
	})

	assert.Contains(t, prompt, "Date: 2026-03-14")
	assert.Contains(t, prompt, "- Nitrogen: 90")
	assert.Contains(t, prompt, "- Temperature: 25.5°C")
	assert.Contains(t, prompt, "- pH: 5.5")
	assert.NotContains(t, prompt, "No farm summary provided.")
}

func TestBuildPromptWithoutDate(t *testing.T) {
	prompt := buildPrompt("q", &FarmData{Nitrogen: 1})
	assert.Contains(t, prompt, "Date: N/A")
}

func TestReplyUnwrapsFirstCandidate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Plant after the last frost."}]}}]}`))
	}))
	defer srv.Close()

	svc := NewService("test-key", "gemini-2.0-flash-001", time.Second)
	svc.baseURL = srv.URL

	reply, err := svc.Reply(context.Background(), "when should I plant maize?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Plant after the last frost.", reply)
	assert.Equal(t, "/models/gemini-2.0-flash-001:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "when should I plant maize?")
	assert.Equal(t, 1000, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestReplyEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	svc := NewService("test-key", "m", time.Second)
	svc.baseURL = srv.URL

	_, err := svc.Reply(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestReplyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewService("test-key", "m", time.Second)
	svc.baseURL = srv.URL

	_, err := svc.Reply(context.Background(), "q", nil)
	assert.ErrorContains(t, err, "unexpected status 429")
}
