package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/csheth/cowrite/internal/draft"
)

var essay = []draft.Section{
	{Title: "Intro", Content: "Hook"},
	{Title: "Body", Content: "Argument"},
}

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
}

func TestBuildRevisionPromptKeepsSectionOrder(t *testing.T) {
	prompt := BuildRevisionPrompt("Essay", essay)
	want := "The title is Essay; Next section - title: Intro; section content: Hook; Next section - title: Body; section content: Argument"
	if !strings.HasSuffix(prompt.User, want) {
		t.Fatalf("unexpected user prompt: %s", prompt.User)
	}
	if !strings.Contains(prompt.System, "use markdown") {
		t.Fatalf("system prompt should ask for markdown: %s", prompt.System)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cases := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{provider: "", want: "Ollama (ministral-3:latest)"},
		{provider: "ollama", want: "Ollama (ministral-3:latest)"},
		{provider: "echo", want: "Echo"},
		{provider: "openai", wantErr: true},
		{provider: "anthropic", wantErr: true},
	}
	t.Setenv("OLLAMA_MODEL", "")
	for _, tc := range cases {
		client, err := New(Config{Provider: tc.provider})
		if tc.wantErr {
			if err == nil {
				t.Fatalf("provider %q: expected error", tc.provider)
			}
			continue
		}
		if err != nil {
			t.Fatalf("provider %q: %v", tc.provider, err)
		}
		if client.Name() != tc.want {
			t.Fatalf("provider %q: got %s want %s", tc.provider, client.Name(), tc.want)
		}
	}
}

func TestOllamaClientRevise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model   string         `json:"model"`
			System  string         `json:"system"`
			Prompt  string         `json:"prompt"`
			Stream  bool           `json:"stream"`
			Options map[string]int `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.Model != "qwen3-vl:8b" {
			t.Errorf("expected model qwen3-vl:8b, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "The title is Essay") {
			t.Errorf("prompt missing title: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Error("expected streaming to be disabled")
		}
		if payload.Options["num_predict"] != 1500 {
			t.Errorf("expected num_predict 1500, got %d", payload.Options["num_predict"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"  # Essay\n\nPolished.  ","done":true}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: "ollama", Model: "qwen3-vl:8b", Endpoint: server.URL + "/", HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Revise(context.Background(), "Essay", essay)
	if err != nil {
		t.Fatalf("revise failed: %v", err)
	}
	if result != "# Essay\n\nPolished." {
		t.Fatalf("unexpected revise result: %q", result)
	}
}

func TestOllamaClientEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"   ","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "m", maxTokens: 10, client: server.Client()}
	if _, err := client.Revise(context.Background(), "Essay", essay); err == nil {
		t.Fatal("expected empty response to fail")
	}
}

func TestOllamaClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "m", maxTokens: 10, client: server.Client()}
	_, err := client.Revise(context.Background(), "Essay", essay)
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestOpenAIClientRevise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %s", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.Model != "gpt-test" {
			t.Errorf("expected model gpt-test, got %s", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-test",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"## Intro\nSharper hook."}}]}`))
	}))
	defer server.Close()

	client, err := New(Config{
		Provider:   "openai",
		Model:      "gpt-test",
		APIKey:     "sk-test",
		Endpoint:   server.URL,
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Revise(context.Background(), "Essay", essay)
	if err != nil {
		t.Fatalf("revise failed: %v", err)
	}
	if result != "## Intro\nSharper hook." {
		t.Fatalf("unexpected result: %q", result)
	}
}

func TestEchoRendersDraftAsMarkdown(t *testing.T) {
	out, err := Echo{}.Revise(context.Background(), "Essay", essay)
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}
	want := "# Essay\n\n## Intro\n\nHook\n\n## Body\n\nArgument"
	if out != want {
		t.Fatalf("unexpected echo output:\n%s", out)
	}
}
