package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFiltersPlaceholders(t *testing.T) {
	var gotQuery map[string]string
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": "ok",
  "totalResults": 4,
  "articles": [
    {"source": {"id": null, "name": "Wire"}, "title": "Kept", "description": "Useful", "url": "https://a", "urlToImage": "https://a/img.jpg", "publishedAt": "2026-10-01T00:00:00Z"},
    {"source": {"id": null, "name": "Wire"}, "title": "[Removed]", "description": "x", "url": "https://b"},
    {"source": {"id": null, "name": "Wire"}, "title": "No description", "description": null, "url": "https://c"},
    {"source": {"id": null, "name": "Wire"}, "title": "Removed description", "description": "[Removed]", "url": "https://d"}
  ]
}`))
	}))
	defer srv.Close()

	client := New(srv.URL+"/", "key-123")
	result, err := client.Search(context.Background(), Query{Q: "robots", Page: 2, PageSize: 50})
	require.NoError(t, err)

	require.Len(t, result.Articles, 1)
	assert.Equal(t, "Kept", result.Articles[0].Title)
	assert.Equal(t, 4, result.TotalResults)
	assert.Equal(t, "InfoGrid/1.0", gotAgent)
	assert.Equal(t, map[string]string{
		"q":        "robots",
		"language": "en",
		"sortBy":   "publishedAt",
		"page":     "2",
		"pageSize": "20",
		"apiKey":   "key-123",
	}, gotQuery)
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "bad").Search(context.Background(), Query{})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Equal(t, "Your API key is invalid", upstream.Message)
}

func TestSearchWithoutKey(t *testing.T) {
	_, err := New("", "").Search(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestQueryNormalize(t *testing.T) {
	q := Query{Q: "  ", Page: 0, PageSize: 0}.Normalize()
	assert.Equal(t, Query{Q: DefaultQuery, Page: 1, PageSize: DefaultPageSize}, q)
}
