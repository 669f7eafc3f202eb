package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
}

func TestFetchNews(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "Apple", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Apple ships new thing", "url": "https://example.com/a", "publishedAt": "2026-08-29T08:00:00Z"},
				{"title": "untitled", "url": "", "publishedAt": "2026-08-29T09:00:00Z"},
				{"title": "Apple does another thing", "url": "https://example.com/b", "publishedAt": "2026-08-29T10:30:00Z"}
			]
		}`))
	})

	to := time.Now().UTC()
	articles, err := client.FetchNews(context.Background(), "Apple", to.Add(-24*time.Hour), to)
	require.NoError(t, err)
	require.Len(t, articles, 2, "articles without a URL should be dropped")
	assert.Equal(t, "Apple ships new thing", articles[0].Title)
	assert.Equal(t, "https://example.com/a", articles[0].URL)
	assert.Equal(t, time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC), articles[0].PublishedAt)
}

func TestFetchNews_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "Your API key is invalid"}`))
	})

	to := time.Now().UTC()
	_, err := client.FetchNews(context.Background(), "Apple", to.Add(-24*time.Hour), to)
	assert.ErrorIs(t, err, providers.ErrInvalidResponse)
}

func TestFetchNews_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	to := time.Now().UTC()
	_, err := client.FetchNews(context.Background(), "Apple", to.Add(-24*time.Hour), to)
	assert.ErrorIs(t, err, providers.ErrRateLimited)
}

func TestFetchNews_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	to := time.Now().UTC()
	_, err := client.FetchNews(context.Background(), "Apple", to.Add(-24*time.Hour), to)
	assert.ErrorIs(t, err, providers.ErrTransientNetwork)
}
