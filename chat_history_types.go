package aichat

import (
	"time"

	"github.com/google/uuid"
)

// ChatHistoryMessage is a history entry enriched with timing and token
// accounting for storage backends.
type ChatHistoryMessage struct {
	LLMMessage
	GeneratedAt time.Time `json:"generated_at"`
	InputToken  int64     `json:"input_token"`
	OutputToken int64     `json:"output_token"`
}

// ChatHistory is a stored conversation: an ordered list of messages under a
// stable UUID.
type ChatHistory struct {
	UUID      uuid.UUID            `json:"uuid"`
	Messages  []ChatHistoryMessage `json:"messages"`
	CreatedAt time.Time            `json:"created_at"`
}
