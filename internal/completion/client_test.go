package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/cowrite/internal/draft"
)

func essayForm() draft.Form {
	f := draft.NewForm().WithTitle("Essay")
	f = f.EditSection(0, draft.FieldTitle, "Intro")
	f = f.EditSection(0, draft.FieldContent, "Hook")
	f = f.AddSection()
	f = f.EditSection(1, draft.FieldTitle, "Body")
	f = f.EditSection(1, draft.FieldContent, "Argument")
	return f
}

func TestClientCompletePostsDraft(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/completion", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "Essay", raw["title"])
		assert.Equal(t, []any{
			map[string]any{"title": "Intro", "content": "Hook"},
			map[string]any{"title": "Body", "content": "Argument"},
		}, raw["sections"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"completion":"# Intro\nBetter hook"}`))
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL + "/completion", HTTPClient: server.Client()})
	resp, err := client.Complete(context.Background(), NewRequest(essayForm()))
	require.NoError(t, err)
	assert.Equal(t, "# Intro\nBetter hook", resp.Completion)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientCompleteNoRetryOnStatusError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL, HTTPClient: server.Client()})
	_, err := client.Complete(context.Background(), NewRequest(essayForm()))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "upstream down", statusErr.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientCompleteMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL, HTTPClient: server.Client()})
	_, err := client.Complete(context.Background(), NewRequest(essayForm()))
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestNewRequestPreservesOrder(t *testing.T) {
	req := NewRequest(essayForm())
	assert.Equal(t, "Essay", req.Title)
	assert.Equal(t, []draft.Section{
		{Title: "Intro", Content: "Hook"},
		{Title: "Body", Content: "Argument"},
	}, req.Sections)
}

func TestNewDefaults(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, DefaultEndpoint, client.Endpoint())
	assert.Equal(t, defaultHTTPTimeout, client.client.Timeout)

	custom := &http.Client{Timeout: 42 * time.Second}
	assert.Same(t, custom, New(Config{HTTPClient: custom}).client)
}
