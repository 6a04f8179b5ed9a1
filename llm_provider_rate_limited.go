package aichat

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedLLMProvider decorates any LLMProvider with a client-side rate
// limiter. Requests block until a token is available or the context is
// canceled; nothing is ever retried.
type RateLimitedLLMProvider struct {
	provider LLMProvider
	limiter  *rate.Limiter
}

// NewRateLimitedLLMProvider wraps provider so that at most limit requests
// per second are issued, with the given burst size.
func NewRateLimitedLLMProvider(provider LLMProvider, limit rate.Limit, burst int) *RateLimitedLLMProvider {
	return &RateLimitedLLMProvider{
		provider: provider,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// GetResponse implements LLMProvider, waiting for limiter admission first.
func (p *RateLimitedLLMProvider) GetResponse(ctx context.Context, messages []LLMMessage, config LLMRequestConfig) (LLMResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return LLMResponse{}, err
	}
	return p.provider.GetResponse(ctx, messages, config)
}

// GetStreamingResponse implements LLMProvider, waiting for limiter
// admission before the stream is opened. Individual chunks are not limited.
func (p *RateLimitedLLMProvider) GetStreamingResponse(ctx context.Context, messages []LLMMessage, config LLMRequestConfig) (<-chan StreamingLLMResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.provider.GetStreamingResponse(ctx, messages, config)
}
