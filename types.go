// Package aichat provides a provider-agnostic chat session over hosted LLM
// APIs. It exposes a common message/request model, an LLMProvider interface
// with OpenAI and Anthropic implementations, and a ChatSession that owns an
// append-only conversation history.
package aichat

import "context"

// LLMMessageRole represents the role of a participant in a conversation.
type LLMMessageRole string

const (
	// SystemRole tags instruction text that steers model behavior.
	SystemRole LLMMessageRole = "system"
	// UserRole tags messages authored by the end user.
	UserRole LLMMessageRole = "user"
	// AssistantRole tags messages produced by the model.
	AssistantRole LLMMessageRole = "assistant"
)

// LLMMessage is a single role-tagged message. Messages are immutable once
// appended to a session history.
type LLMMessage struct {
	Role LLMMessageRole `json:"role"`
	Text string         `json:"text"`
}

// LLMResponse encapsulates the result of a completed LLM request.
type LLMResponse struct {
	// Text contains the generated response, possibly empty.
	Text string `json:"text"`
	// TotalInputToken is the number of tokens in the submitted prompt.
	TotalInputToken int `json:"total_input_token"`
	// TotalOutputToken is the number of tokens in the generated response.
	TotalOutputToken int `json:"total_output_token"`
	// CompletionTime is the total request duration in seconds.
	CompletionTime float64 `json:"completion_time"`
}

// StreamingLLMResponse is a chunk of a streaming response.
type StreamingLLMResponse struct {
	// Text contains the partial response text.
	Text string
	// Done indicates the stream has finished.
	Done bool
	// Error contains any error that occurred during streaming.
	Error error
	// TokenCount is the number of tokens in this chunk.
	TokenCount int
}

const (
	// DefaultMaxToken bounds response length when no explicit limit is set.
	DefaultMaxToken int64 = 1024

	// DefaultTopP is the default nucleus sampling parameter.
	DefaultTopP float64 = 0.5

	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature float64 = 0.5
)

// LLMRequestConfig holds per-request tuning parameters shared by all
// providers.
type LLMRequestConfig struct {
	MaxToken    int64
	TopP        float64
	Temperature float64
}

// RequestOption configures an LLMRequestConfig.
type RequestOption func(*LLMRequestConfig)

// WithMaxToken sets the maximum number of tokens to generate.
func WithMaxToken(maxToken int64) RequestOption {
	return func(c *LLMRequestConfig) {
		if maxToken > 0 {
			c.MaxToken = maxToken
		}
	}
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(topP float64) RequestOption {
	return func(c *LLMRequestConfig) {
		if topP > 0 {
			c.TopP = topP
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) RequestOption {
	return func(c *LLMRequestConfig) {
		if temperature > 0 {
			c.Temperature = temperature
		}
	}
}

// NewRequestConfig creates a request configuration with defaults applied,
// then any options.
func NewRequestConfig(opts ...RequestOption) LLMRequestConfig {
	config := LLMRequestConfig{
		MaxToken:    DefaultMaxToken,
		TopP:        DefaultTopP,
		Temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// LLMProvider defines the contract for sending a conversation to a hosted
// model and receiving assistant text back. Implementations receive the full
// normalized message history, including the effective system message as the
// first entry when one is set, and are responsible for mapping it onto their
// vendor's request shape.
type LLMProvider interface {
	// GetResponse generates a complete response for the given messages.
	GetResponse(ctx context.Context, messages []LLMMessage, config LLMRequestConfig) (LLMResponse, error)

	// GetStreamingResponse streams the response as it is generated. The
	// returned channel is closed after a chunk with Done set is delivered.
	GetStreamingResponse(ctx context.Context, messages []LLMMessage, config LLMRequestConfig) (<-chan StreamingLLMResponse, error)
}
