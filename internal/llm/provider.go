package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/ppiankov/juridoc/internal/model"
)

var (
	// ErrTimeout is returned when a completion does not finish in time
	ErrTimeout = errors.New("model request timed out")

	// ErrUnavailable is returned when the model endpoint cannot serve the request
	ErrUnavailable = errors.New("model endpoint unavailable")
)

// Provider defines the interface for model-serving endpoints
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one chat completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the endpoint is reachable
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one system + user prompt pair sent to a named model
type CompletionRequest struct {
	// Model is the served model or LoRA adapter name
	Model string

	System string
	Prompt string

	// MaxTokens limits the response length
	MaxTokens int

	Temperature float32
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai" (any OpenAI-compatible server such as vLLM), "ollama"
	Provider string

	// APIKey is sent as a bearer token; vLLM accepts "EMPTY"
	APIKey string

	BaseURL string

	// Timeout for one completion
	Timeout int // seconds

	Temperature float32

	// Proxy for outbound calls (empty = environment)
	Proxy string
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		Temperature: c.Temperature,
		Proxy:       c.Proxy,
	}
}

// classify tags transport-level failures with ErrTimeout or ErrUnavailable
// so callers can tell them apart from bad requests.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// unavailableStatus reports whether an HTTP status means the endpoint is
// overloaded or down rather than the request being wrong.
func unavailableStatus(code int) bool {
	return code == 429 || code >= 500
}
