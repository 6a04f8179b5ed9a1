package aichat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryChatHistoryStorage_CreateChat(t *testing.T) {
	storage := NewInMemoryChatHistoryStorage()

	chat, err := storage.CreateChat(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, chat.UUID)
	assert.Empty(t, chat.Messages)
	assert.False(t, chat.CreatedAt.IsZero())
}

func TestInMemoryChatHistoryStorage_AddMessage(t *testing.T) {
	storage := NewInMemoryChatHistoryStorage()

	chat, err := storage.CreateChat(context.Background())
	require.NoError(t, err)

	message := ChatHistoryMessage{
		LLMMessage:  LLMMessage{Role: UserRole, Text: "hello"},
		GeneratedAt: time.Now(),
	}
	require.NoError(t, storage.AddMessage(context.Background(), chat.UUID, message))

	stored, err := storage.GetChat(context.Background(), chat.UUID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, "hello", stored.Messages[0].Text)
}

func TestInMemoryChatHistoryStorage_AddMessage_UnknownChat(t *testing.T) {
	storage := NewInMemoryChatHistoryStorage()

	err := storage.AddMessage(context.Background(), uuid.New(), ChatHistoryMessage{
		LLMMessage: LLMMessage{Role: UserRole, Text: "hello"},
	})
	assert.Error(t, err)
}

func TestInMemoryChatHistoryStorage_GetChat_NotFound(t *testing.T) {
	storage := NewInMemoryChatHistoryStorage()

	_, err := storage.GetChat(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestInMemoryChatHistoryStorage_ListChatHistories(t *testing.T) {
	storage := NewInMemoryChatHistoryStorage()

	for i := 0; i < 3; i++ {
		_, err := storage.CreateChat(context.Background())
		require.NoError(t, err)
	}

	chats, err := storage.ListChatHistories(context.Background())
	require.NoError(t, err)
	assert.Len(t, chats, 3)
}

func TestInMemoryChatHistoryStorage_DeleteChat(t *testing.T) {
	storage := NewInMemoryChatHistoryStorage()

	chat, err := storage.CreateChat(context.Background())
	require.NoError(t, err)

	require.NoError(t, storage.DeleteChat(context.Background(), chat.UUID))

	_, err = storage.GetChat(context.Background(), chat.UUID)
	assert.Error(t, err)

	assert.Error(t, storage.DeleteChat(context.Background(), chat.UUID))
}
