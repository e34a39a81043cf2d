package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/csheth/cowrite/internal/draft"
)

type ollamaClient struct {
	host      string
	model     string
	maxTokens int
	client    *http.Client
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) Revise(ctx context.Context, title string, sections []draft.Section) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("draft has no sections; nothing to revise")
	}
	prompt := BuildRevisionPrompt(title, sections)
	return c.generate(ctx, prompt)
}

func (c *ollamaClient) generate(ctx context.Context, prompt Prompt) (string, error) {
	payload := map[string]any{
		"model":  c.model,
		"system": prompt.System,
		"prompt": prompt.User,
		"stream": false,
		"options": map[string]any{
			"num_predict": c.maxTokens,
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return strings.TrimSpace(parsed.Response), nil
}
