package aichat

import "context"

// NoOpsLLMProvider implements the LLMProvider interface for testing
// purposes. It returns canned responses for both regular and streaming
// requests and can be configured to fail.
type NoOpsLLMProvider struct {
	response       LLMResponse
	err            error
	streamResponse StreamingLLMResponse
}

// NoOpsOption defines the function signature for option pattern.
type NoOpsOption func(*NoOpsLLMProvider)

// WithResponse sets a custom LLMResponse for the NoOpsLLMProvider.
func WithResponse(response LLMResponse) NoOpsOption {
	return func(n *NoOpsLLMProvider) {
		n.response = response
	}
}

// WithError makes every request fail with the given error.
func WithError(err error) NoOpsOption {
	return func(n *NoOpsLLMProvider) {
		n.err = err
	}
}

// WithStreamingResponse sets a custom StreamingLLMResponse for the NoOpsLLMProvider.
func WithStreamingResponse(response StreamingLLMResponse) NoOpsOption {
	return func(n *NoOpsLLMProvider) {
		n.streamResponse = response
	}
}

// NewNoOpsLLMProvider creates a new NoOpsLLMProvider with optional configurations.
func NewNoOpsLLMProvider(opts ...NoOpsOption) *NoOpsLLMProvider {
	provider := &NoOpsLLMProvider{
		response: LLMResponse{
			Text:             "Default NoOps response",
			TotalInputToken:  10,
			TotalOutputToken: 3,
			CompletionTime:   0.1,
		},
		streamResponse: StreamingLLMResponse{
			Text:       "Default NoOps streaming response",
			Done:       true,
			TokenCount: 4,
		},
	}

	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// GetResponse implements the LLMProvider interface.
func (n *NoOpsLLMProvider) GetResponse(_ context.Context, _ []LLMMessage, _ LLMRequestConfig) (LLMResponse, error) {
	if n.err != nil {
		return LLMResponse{}, n.err
	}
	return n.response, nil
}

// GetStreamingResponse implements the LLMProvider interface.
func (n *NoOpsLLMProvider) GetStreamingResponse(ctx context.Context, _ []LLMMessage, _ LLMRequestConfig) (<-chan StreamingLLMResponse, error) {
	if n.err != nil {
		return nil, n.err
	}

	responseChan := make(chan StreamingLLMResponse)

	go func() {
		defer close(responseChan)

		select {
		case <-ctx.Done():
			responseChan <- StreamingLLMResponse{
				Error: ctx.Err(),
				Done:  true,
			}
		default:
			responseChan <- n.streamResponse
		}
	}()

	return responseChan, nil
}
