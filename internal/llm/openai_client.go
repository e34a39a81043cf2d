package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/csheth/cowrite/internal/draft"
)

// openAIClient talks to any OpenAI-compatible chat completions endpoint.
type openAIClient struct {
	model     string
	maxTokens int
	client    openai.Client
}

func newOpenAIClient(cfg Config, maxTokens int) (*openAIClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set llm.api_key or OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(pickHTTPClient(cfg.HTTPClient)),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &openAIClient{
		model:     model,
		maxTokens: maxTokens,
		client:    openai.NewClient(opts...),
	}, nil
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.model)
}

func (c *openAIClient) Revise(ctx context.Context, title string, sections []draft.Section) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("draft has no sections; nothing to revise")
	}
	prompt := BuildRevisionPrompt(title, sections)
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		MaxCompletionTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai returned an empty response")
	}
	return content, nil
}
