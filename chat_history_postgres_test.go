package aichat

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/aichat/observability"
)

func setupPostgresMock(t *testing.T) (*PostgresChatHistoryStorage, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS chats").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS messages").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_messages_chat_uuid").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	storage, err := NewPostgresChatHistoryStorageFromDB(db, observability.NewNullLogger())
	require.NoError(t, err)

	return storage, mock, func() { db.Close() }
}

func TestPostgresChatHistoryStorage_CreateChat(t *testing.T) {
	storage, mock, cleanup := setupPostgresMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO chats").
		WillReturnResult(sqlmock.NewResult(0, 1))

	chat, err := storage.CreateChat(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, chat.UUID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChatHistoryStorage_AddMessage(t *testing.T) {
	storage, mock, cleanup := setupPostgresMock(t)
	defer cleanup()

	chatUUID := uuid.New()

	mock.ExpectQuery("SELECT 1 FROM chats").
		WithArgs(chatUUID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := storage.AddMessage(context.Background(), chatUUID, ChatHistoryMessage{
		LLMMessage:  LLMMessage{Role: UserRole, Text: "hi"},
		GeneratedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChatHistoryStorage_AddMessage_UnknownChat(t *testing.T) {
	storage, mock, cleanup := setupPostgresMock(t)
	defer cleanup()

	chatUUID := uuid.New()

	mock.ExpectQuery("SELECT 1 FROM chats").
		WithArgs(chatUUID).
		WillReturnError(sql.ErrNoRows)

	err := storage.AddMessage(context.Background(), chatUUID, ChatHistoryMessage{
		LLMMessage: LLMMessage{Role: UserRole, Text: "hi"},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChatHistoryStorage_GetChat(t *testing.T) {
	storage, mock, cleanup := setupPostgresMock(t)
	defer cleanup()

	chatUUID := uuid.New()
	createdAt := time.Now().UTC()
	generatedAt := time.Now().UTC()

	mock.ExpectQuery("SELECT created_at FROM chats").
		WithArgs(chatUUID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectQuery("SELECT role, text, generated_at, input_token, output_token FROM messages").
		WithArgs(chatUUID).
		WillReturnRows(sqlmock.NewRows([]string{"role", "text", "generated_at", "input_token", "output_token"}).
			AddRow("user", "hi", generatedAt, 0, 0).
			AddRow("assistant", "hello", generatedAt, 3, 1))

	chat, err := storage.GetChat(context.Background(), chatUUID)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, UserRole, chat.Messages[0].Role)
	assert.Equal(t, AssistantRole, chat.Messages[1].Role)
	assert.Equal(t, int64(1), chat.Messages[1].OutputToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChatHistoryStorage_GetChat_NotFound(t *testing.T) {
	storage, mock, cleanup := setupPostgresMock(t)
	defer cleanup()

	chatUUID := uuid.New()

	mock.ExpectQuery("SELECT created_at FROM chats").
		WithArgs(chatUUID).
		WillReturnError(sql.ErrNoRows)

	_, err := storage.GetChat(context.Background(), chatUUID)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresChatHistoryStorage_DeleteChat_NotFound(t *testing.T) {
	storage, mock, cleanup := setupPostgresMock(t)
	defer cleanup()

	chatUUID := uuid.New()

	mock.ExpectExec("DELETE FROM chats").
		WithArgs(chatUUID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := storage.DeleteChat(context.Background(), chatUUID)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
