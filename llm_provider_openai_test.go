package aichat

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockOpenAIClient implements OpenAIClientProvider interface for testing
type MockOpenAIClient struct {
	createCompletionFunc          func(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
	createStreamingCompletionFunc func(ctx context.Context, params openai.ChatCompletionNewParams) *ssestream.Stream[openai.ChatCompletionChunk]
}

func (m *MockOpenAIClient) CreateCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	if m.createCompletionFunc != nil {
		return m.createCompletionFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockOpenAIClient) CreateStreamingCompletion(ctx context.Context, params openai.ChatCompletionNewParams) *ssestream.Stream[openai.ChatCompletionChunk] {
	if m.createStreamingCompletionFunc != nil {
		return m.createStreamingCompletionFunc(ctx, params)
	}
	return nil
}

func TestOpenAILLMProvider_NewOpenAILLMProvider(t *testing.T) {
	tests := []struct {
		name          string
		config        OpenAIProviderConfig
		expectedModel string
	}{
		{
			name: "with specified model",
			config: OpenAIProviderConfig{
				Client: &MockOpenAIClient{},
				Model:  "gpt-4o-mini",
			},
			expectedModel: "gpt-4o-mini",
		},
		{
			name: "with default model",
			config: OpenAIProviderConfig{
				Client: &MockOpenAIClient{},
			},
			expectedModel: string(openai.ChatModelGPT4o),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewOpenAILLMProvider(tt.config)

			assert.Equal(t, tt.expectedModel, provider.model, "unexpected model")
			assert.NotNil(t, provider.client, "expected client to be initialized")
		})
	}
}

func TestOpenAILLMProvider_GetResponse(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		expectedText string
	}{
		{
			name:         "successful response",
			content:      "hello",
			expectedText: "hello",
		},
		{
			name:         "absent content yields empty text",
			content:      "",
			expectedText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedParams openai.ChatCompletionNewParams
			mockClient := &MockOpenAIClient{
				createCompletionFunc: func(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
					capturedParams = params
					return &openai.ChatCompletion{
						Choices: []openai.ChatCompletionChoice{
							{Message: openai.ChatCompletionMessage{Content: tt.content}},
						},
						Usage: openai.CompletionUsage{
							PromptTokens:     7,
							CompletionTokens: 2,
						},
					}, nil
				},
			}

			provider := NewOpenAILLMProvider(OpenAIProviderConfig{
				Client: mockClient,
				Model:  "gpt-4o",
			})

			messages := []LLMMessage{
				{Role: SystemRole, Text: "be brief"},
				{Role: UserRole, Text: "hi"},
			}

			result, err := provider.GetResponse(context.Background(), messages, NewRequestConfig())
			require.NoError(t, err)

			assert.Equal(t, tt.expectedText, result.Text)
			assert.Equal(t, 7, result.TotalInputToken)
			assert.Equal(t, 2, result.TotalOutputToken)
			assert.Greater(t, result.CompletionTime, float64(0))

			// The system message stays inline in the request.
			assert.Len(t, capturedParams.Messages.Value, 2)
			assert.Equal(t, "gpt-4o", capturedParams.Model.Value)
			assert.Equal(t, DefaultMaxToken, capturedParams.MaxTokens.Value)
		})
	}
}

func TestOpenAILLMProvider_GetResponse_NoChoices(t *testing.T) {
	mockClient := &MockOpenAIClient{
		createCompletionFunc: func(_ context.Context, _ openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
			return &openai.ChatCompletion{}, nil
		},
	}

	provider := NewOpenAILLMProvider(OpenAIProviderConfig{Client: mockClient})

	_, err := provider.GetResponse(context.Background(), []LLMMessage{{Role: UserRole, Text: "hi"}}, NewRequestConfig())
	require.Error(t, err)

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorKindInvalidResponse, llmErr.Kind)
}

func TestOpenAILLMProvider_GetResponse_TransportFailure(t *testing.T) {
	mockClient := &MockOpenAIClient{
		createCompletionFunc: func(_ context.Context, _ openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}

	provider := NewOpenAILLMProvider(OpenAIProviderConfig{Client: mockClient})

	_, err := provider.GetResponse(context.Background(), []LLMMessage{{Role: UserRole, Text: "hi"}}, NewRequestConfig())
	require.Error(t, err)

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorKindTransport, llmErr.Kind)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, IsCredentialsRejected(err))
}

// sseTransport replays canned SSE lines for streaming tests.
type sseTransport struct {
	responses []string
}

func (m *sseTransport) RoundTrip(_ *http.Request) (*http.Response, error) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		for _, resp := range m.responses {
			time.Sleep(10 * time.Millisecond)
			pw.Write([]byte(resp + "\n\n"))
		}
	}()

	return &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Content-Type": []string{"text/event-stream"},
		},
		Body: pr,
	}, nil
}

func TestOpenAILLMProvider_GetStreamingResponse(t *testing.T) {
	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithHTTPClient(&http.Client{Transport: &sseTransport{
			responses: []string{
				`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
				`data: {"choices":[{"delta":{"content":" world"}}]}`,
				`data: [DONE]`,
			},
		}}),
	)

	mockClient := &MockOpenAIClient{
		createStreamingCompletionFunc: func(ctx context.Context, params openai.ChatCompletionNewParams) *ssestream.Stream[openai.ChatCompletionChunk] {
			return client.Chat.Completions.NewStreaming(ctx, params)
		},
	}

	provider := NewOpenAILLMProvider(OpenAIProviderConfig{Client: mockClient})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := provider.GetStreamingResponse(ctx, []LLMMessage{{Role: UserRole, Text: "hi"}}, NewRequestConfig())
	require.NoError(t, err)

	var text string
	for chunk := range stream {
		require.NoError(t, chunk.Error)
		if chunk.Done {
			break
		}
		text += chunk.Text
	}

	assert.Equal(t, "Hello world", text)
}
