package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/cowrite/internal/draft"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderEcho   = "echo"
)

const (
	defaultOllamaModel = "ministral-3:latest"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultMaxTokens   = 1500
	// Drafts are short; the cap only keeps a runaway paste from blowing the context window.
	maxDraftChars = 200_000
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Config describes how to build an LLM client.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	MaxTokens  int
	HTTPClient *http.Client
}

// Client revises a draft article and returns markdown.
type Client interface {
	Revise(ctx context.Context, title string, sections []draft.Section) (string, error)
	Name() string
}

// New builds the client for cfg.Provider, filling gaps from the environment.
func New(cfg Config) (Client, error) {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOllama:
		host := cfg.Endpoint
		if host == "" {
			if env := os.Getenv("OLLAMA_HOST"); env != "" {
				host = env
			} else {
				host = "http://localhost:11434"
			}
		}
		model := cfg.Model
		if model == "" {
			if env := os.Getenv("OLLAMA_MODEL"); env != "" {
				model = env
			} else {
				model = defaultOllamaModel
			}
		}
		return &ollamaClient{
			host:      strings.TrimRight(host, "/"),
			model:     model,
			maxTokens: maxTokens,
			client:    pickHTTPClient(cfg.HTTPClient),
		}, nil
	case ProviderOpenAI:
		return newOpenAIClient(cfg, maxTokens)
	case ProviderEcho:
		return Echo{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Allow longer-running generations (Ollama often needs >60s) and rely on the caller's context for cancellation.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
