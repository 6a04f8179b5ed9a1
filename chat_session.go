package aichat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/aichat/observability"
)

// ErrNoProvider is returned by NewChatSession when no LLM provider is bound.
var ErrNoProvider = errors.New("chat session requires an LLM provider")

// ChatSessionConfig holds the construction-time configuration for a
// ChatSession. Provider is required; everything else has working defaults.
type ChatSessionConfig struct {
	// Provider is the bound LLM backend. Exactly one provider is bound per
	// session and it cannot change for the session's lifetime.
	Provider LLMProvider

	// RequestConfig tunes every request made by the session. The zero value
	// is replaced with NewRequestConfig().
	RequestConfig LLMRequestConfig

	// Storage optionally mirrors every appended message to a
	// ChatHistoryStorage backend. The session's own in-memory history stays
	// authoritative.
	Storage ChatHistoryStorage

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger observability.Logger
}

// ChatSession owns an ordered, append-only conversation history and
// dispatches user turns to the provider bound at construction.
//
// A session is not safe for concurrent use; each turn blocks the caller
// until the provider responds or fails.
type ChatSession struct {
	provider      LLMProvider
	requestConfig LLMRequestConfig
	history       []LLMMessage
	systemPrompt  string
	storage       ChatHistoryStorage
	chatID        uuid.UUID
	logger        observability.Logger
}

// NewChatSession creates a session with the provider bound for its entire
// lifetime. It fails when config.Provider is nil, so a constructed session
// can always dispatch.
func NewChatSession(ctx context.Context, config ChatSessionConfig) (*ChatSession, error) {
	if config.Provider == nil {
		return nil, ErrNoProvider
	}

	if config.RequestConfig == (LLMRequestConfig{}) {
		config.RequestConfig = NewRequestConfig()
	}
	if config.Logger == nil {
		config.Logger = observability.NewNullLogger()
	}

	session := &ChatSession{
		provider:      config.Provider,
		requestConfig: config.RequestConfig,
		storage:       config.Storage,
		logger:        config.Logger,
	}

	if session.storage != nil {
		chat, err := session.storage.CreateChat(ctx)
		if err != nil {
			return nil, err
		}
		session.chatID = chat.UUID
	}

	return session, nil
}

// System replaces the effective system prompt and records the call as a
// system-role history entry. Repeated calls append additional entries; only
// the most recent text is sent to the provider.
func (s *ChatSession) System(content string) {
	s.systemPrompt = content
	s.append(LLMMessage{Role: SystemRole, Text: content}, 0, 0)
}

// User appends the user message to history, dispatches the conversation to
// the bound provider and appends the assistant reply on success. On failure
// the user entry remains in history, no assistant entry is added and the
// provider error is returned unchanged.
//
// An empty reply is success: an empty assistant entry is appended.
func (s *ChatSession) User(ctx context.Context, content string) (string, error) {
	s.append(LLMMessage{Role: UserRole, Text: content}, 0, 0)

	response, err := s.provider.GetResponse(ctx, s.outgoingMessages(), s.requestConfig)
	if err != nil {
		return "", err
	}

	s.append(LLMMessage{Role: AssistantRole, Text: response.Text}, response.TotalInputToken, response.TotalOutputToken)
	return response.Text, nil
}

// SystemPrompt returns the effective system prompt, i.e. the text of the
// most recent System call. Empty when System was never called.
func (s *ChatSession) SystemPrompt() string {
	return s.systemPrompt
}

// History returns a copy of the full conversation history in chronological
// order, including every recorded system entry.
func (s *ChatSession) History() []LLMMessage {
	history := make([]LLMMessage, len(s.history))
	copy(history, s.history)
	return history
}

// ChatID returns the storage key for this session. The zero UUID means no
// storage backend is bound.
func (s *ChatSession) ChatID() uuid.UUID {
	return s.chatID
}

// outgoingMessages builds the normalized provider view of the history: the
// effective system prompt as a single leading system entry, followed by all
// user and assistant entries in order. Stale system entries never leave the
// session.
func (s *ChatSession) outgoingMessages() []LLMMessage {
	messages := make([]LLMMessage, 0, len(s.history)+1)
	if s.systemPrompt != "" {
		messages = append(messages, LLMMessage{Role: SystemRole, Text: s.systemPrompt})
	}
	for _, msg := range s.history {
		if msg.Role == SystemRole {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// append records a message in the in-memory history and mirrors it to the
// storage backend when one is bound. Storage failures are logged and do not
// fail the turn.
func (s *ChatSession) append(message LLMMessage, inputToken, outputToken int) {
	s.history = append(s.history, message)

	if s.storage == nil {
		return
	}

	err := s.storage.AddMessage(context.Background(), s.chatID, ChatHistoryMessage{
		LLMMessage:  message,
		GeneratedAt: time.Now().UTC(),
		InputToken:  int64(inputToken),
		OutputToken: int64(outputToken),
	})
	if err != nil {
		s.logger.WithErr(err).Warn("failed to mirror message to chat history storage")
	}
}
