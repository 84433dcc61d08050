package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/juridoc/internal/util"
)

// emptyAPIKey is what vLLM expects when no key is configured
const emptyAPIKey = "EMPTY"

// OpenAIProvider talks to any OpenAI-compatible server. In production that is
// vLLM serving one fine-tuned LoRA adapter per entity type, selected by the
// request's model name.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI-compatible provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = emptyAPIKey
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	// Completions are bounded by the per-request context timeout
	httpClient, err := util.NewHTTPClient(0, config.Proxy)
	if err != nil {
		return nil, err
	}
	clientConfig.HTTPClient = httpClient

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks the endpoint by listing the served models
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Complete runs one chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("model must be specified")
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 500 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion (%s): %w", req.Model, classifyOpenAI(err))
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion (%s): empty response", req.Model)
	}

	return &CompletionResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && unavailableStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && unavailableStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return classify(err)
}
