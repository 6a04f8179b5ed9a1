package aichat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitedLLMProvider_GetResponse(t *testing.T) {
	inner := NewNoOpsLLMProvider(WithResponse(LLMResponse{Text: "ok"}))
	provider := NewRateLimitedLLMProvider(inner, rate.Inf, 1)

	response, err := provider.GetResponse(context.Background(), []LLMMessage{{Role: UserRole, Text: "hi"}}, NewRequestConfig())
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Text)
}

func TestRateLimitedLLMProvider_ContextCanceled(t *testing.T) {
	inner := NewNoOpsLLMProvider()
	// One request per hour with an empty bucket forces Wait to block.
	provider := NewRateLimitedLLMProvider(inner, rate.Every(time.Hour), 1)

	_, err := provider.GetResponse(context.Background(), nil, NewRequestConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = provider.GetResponse(ctx, nil, NewRequestConfig())
	assert.Error(t, err)
}

func TestRateLimitedLLMProvider_GetStreamingResponse(t *testing.T) {
	inner := NewNoOpsLLMProvider(WithStreamingResponse(StreamingLLMResponse{Text: "chunk", Done: true}))
	provider := NewRateLimitedLLMProvider(inner, rate.Inf, 1)

	stream, err := provider.GetStreamingResponse(context.Background(), nil, NewRequestConfig())
	require.NoError(t, err)

	chunk := <-stream
	assert.Equal(t, "chunk", chunk.Text)
	assert.True(t, chunk.Done)
}
