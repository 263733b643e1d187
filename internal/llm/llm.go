// Package llm adapts hosted language models to the analysis workers.
package llm

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"

	"github.com/ericksa/legalyze/internal/config"
)

// Generator produces one completion for a system and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultMaxTokens      = 2048
)

type jetGenerator struct {
	model     jetapi.LanguageModel
	name      string
	maxTokens int
}

// NewGenerator builds a Generator for the configured provider. It returns a
// nil Generator and no error when no API key is set.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	if cfg.MockMode() {
		return nil, nil
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	modelID := strings.TrimSpace(cfg.Model)
	endpoint := strings.TrimSpace(cfg.Endpoint)
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "anthropic":
		if modelID == "" {
			modelID = defaultAnthropicModel
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		return &jetGenerator{
			model:     jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)),
			name:      "anthropic/" + modelID,
			maxTokens: maxTokens,
		}, nil

	case "openai", "":
		if modelID == "" {
			modelID = defaultOpenAIModel
		}
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		}
		if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
			opts = append(opts, openaioption.WithBaseURL(normalized))
		}
		client := openaiclient.NewClient(opts...)
		return &jetGenerator{
			model:     jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)),
			name:      "openai/" + modelID,
			maxTokens: maxTokens,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

func (g *jetGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := jetai.GenerateText(
		ctx,
		buildMessages(system, prompt),
		jetai.WithModel(g.model),
		jetai.WithMaxOutputTokens(g.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.name, err)
	}
	return extractText(resp)
}

func (g *jetGenerator) String() string { return g.name }

func buildMessages(system, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: system})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	var full strings.Builder
	for _, block := range resp.Content {
		text, ok := block.(*jetapi.TextBlock)
		if !ok || text.Text == "" {
			continue
		}
		full.WriteString(text.Text)
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", ErrEmptyResponse
	}
	return full.String(), nil
}

// normalizeOpenAIBaseURL makes sure an OpenAI-compatible base URL ends in /v1.
func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
