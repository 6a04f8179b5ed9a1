package aichat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicLLMProvider implements the LLMProvider interface using
// Anthropic's official Go SDK. This is the message-create-style provider:
// the system prompt travels in a dedicated request field and the outgoing
// message list never contains a system-role entry.
type AnthropicLLMProvider struct {
	client AnthropicClientProvider
	model  anthropic.Model
}

// AnthropicProviderConfig holds the configuration options for creating an
// Anthropic provider.
type AnthropicProviderConfig struct {
	// Client is the AnthropicClientProvider implementation to use
	Client AnthropicClientProvider

	// Model specifies which Anthropic model to use
	Model anthropic.Model
}

// NewAnthropicLLMProvider creates a new Anthropic provider with the
// specified configuration. If no model is specified, it defaults to
// Claude 3.5 Sonnet.
//
// Example usage:
//
//	client := NewAnthropicClient("your-api-key")
//	provider := NewAnthropicLLMProvider(AnthropicProviderConfig{
//	    Client: client,
//	    Model:  anthropic.ModelClaude_3_5_Sonnet_20240620,
//	})
func NewAnthropicLLMProvider(config AnthropicProviderConfig) *AnthropicLLMProvider {
	if config.Model == "" {
		config.Model = anthropic.ModelClaude_3_5_Sonnet_20240620
	}

	return &AnthropicLLMProvider{
		client: config.Client,
		model:  config.Model,
	}
}

// prepareMessageParams creates the Anthropic message parameters from the
// normalized history. System entries are filtered out of the message list
// and the last one becomes the out-of-band System field.
func (p *AnthropicLLMProvider) prepareMessageParams(messages []LLMMessage, config LLMRequestConfig) anthropic.MessageNewParams {
	var anthropicMessages []anthropic.MessageParam
	var systemMessage string

	for _, msg := range messages {
		switch msg.Role {
		case SystemRole:
			systemMessage = msg.Text
		case AssistantRole:
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Text)))
		default:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.F(p.model),
		Messages:    anthropic.F(anthropicMessages),
		MaxTokens:   anthropic.F(config.MaxToken),
		TopP:        anthropic.Float(config.TopP),
		Temperature: anthropic.Float(config.Temperature),
	}

	if systemMessage != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(systemMessage),
		})
	}

	return params
}

// GetResponse generates a response using Anthropic's message API. The reply
// is the in-order concatenation of all text-typed content blocks; other
// block kinds are skipped. A vendor 401 or 403 is translated into an
// ErrorKindCredentialsRejected domain error.
func (p *AnthropicLLMProvider) GetResponse(ctx context.Context, messages []LLMMessage, config LLMRequestConfig) (LLMResponse, error) {
	startTime := time.Now()
	params := p.prepareMessageParams(messages, config)

	message, err := p.client.CreateMessage(ctx, params)
	if err != nil {
		return LLMResponse{}, translateAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch block := block.AsUnion().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		}
	}

	return LLMResponse{
		Text:             text.String(),
		TotalInputToken:  int(message.Usage.InputTokens),
		TotalOutputToken: int(message.Usage.OutputTokens),
		CompletionTime:   time.Since(startTime).Seconds(),
	}, nil
}

// GetStreamingResponse generates a streaming response using Anthropic's
// message API. Text deltas are forwarded as they arrive.
func (p *AnthropicLLMProvider) GetStreamingResponse(ctx context.Context, messages []LLMMessage, config LLMRequestConfig) (<-chan StreamingLLMResponse, error) {
	params := p.prepareMessageParams(messages, config)
	responseChan := make(chan StreamingLLMResponse, 100)

	go func() {
		defer close(responseChan)

		stream := p.client.CreateStreamingMessage(ctx, params)
		for stream.Next() {
			select {
			case <-ctx.Done():
				responseChan <- StreamingLLMResponse{
					Error: ctx.Err(),
					Done:  true,
				}
				return
			default:
				event := stream.Current()
				switch evt := event.AsUnion().(type) {
				case anthropic.ContentBlockDeltaEvent:
					switch delta := evt.Delta.AsUnion().(type) {
					case anthropic.TextDelta:
						responseChan <- StreamingLLMResponse{
							Text:       delta.Text,
							TokenCount: 1,
						}
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			responseChan <- StreamingLLMResponse{
				Error: translateAnthropicError(err),
				Done:  true,
			}
			return
		}

		responseChan <- StreamingLLMResponse{Done: true}
	}()

	return responseChan, nil
}

// translateAnthropicError rewrites a vendor authentication or permission
// failure into a single domain-level credential rejection; everything else
// stays a transport failure. Callers never need the vendor error types to
// tell the two apart.
func translateAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &LLMError{
				Kind:    ErrorKindCredentialsRejected,
				Message: "anthropic rejected the API key; check that the key is valid for Anthropic or switch to the openai provider",
				Err:     err,
			}
		}
	}

	return &LLMError{
		Kind:    ErrorKindTransport,
		Message: "anthropic message request failed",
		Err:     err,
	}
}
