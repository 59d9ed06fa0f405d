package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClient_Search(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"x","results":[{"url":"https://a","title":"A","content":"texte","score":0.9}]}`))
	}))
	defer srv.Close()

	c, err := NewTavilyClient("tvly-test", WithURL(srv.URL))
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "bail Québec Canada", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://a", results[0].URL)
	assert.Equal(t, "A", results[0].Title)
	assert.Equal(t, "texte", results[0].Content)

	assert.Equal(t, "bail Québec Canada", got.Query)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.Equal(t, 3, got.MaxResults)
}

func TestTavilyClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewTavilyClient("bad", WithURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "401")
}

func TestNewTavilyClient_Validation(t *testing.T) {
	_, err := NewTavilyClient("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = NewTavilyClient("k", WithSearchDepth("deep"))
	assert.Error(t, err)
}
