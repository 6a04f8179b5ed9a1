package aichat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/aichat/observability"
)

// SQLiteChatHistoryStorage is an SQLite implementation of ChatHistoryStorage
type SQLiteChatHistoryStorage struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger observability.Logger
}

// NewSQLiteChatHistoryStorage creates a new instance of
// SQLiteChatHistoryStorage. It takes the path to the SQLite database file
// and initializes the schema.
func NewSQLiteChatHistoryStorage(databasePath string, logger observability.Logger) (*SQLiteChatHistoryStorage, error) {
	db, err := sql.Open("sqlite3", databasePath+"?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	storage := &SQLiteChatHistoryStorage{
		db:     db,
		logger: logger,
	}

	if err := storage.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return storage, nil
}

// initSchema creates the necessary tables if they don't exist
func (s *SQLiteChatHistoryStorage) initSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createChatsTableSQL := `
    CREATE TABLE IF NOT EXISTS chats (
        uuid TEXT PRIMARY KEY,
        created_at DATETIME NOT NULL
    );`

	createMessagesTableSQL := `
    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        chat_uuid TEXT NOT NULL,
        role TEXT NOT NULL,
        text TEXT NOT NULL,
        generated_at DATETIME NOT NULL,
        input_token INTEGER DEFAULT 0,
        output_token INTEGER DEFAULT 0,
        FOREIGN KEY (chat_uuid) REFERENCES chats(uuid) ON DELETE CASCADE
    );`

	createMessagesIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_messages_chat_uuid ON messages (chat_uuid);
	`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for schema init: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createChatsTableSQL); err != nil {
		return fmt.Errorf("failed to create chats table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, createMessagesTableSQL); err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, createMessagesIndexSQL); err != nil {
		return fmt.Errorf("failed to create messages chat index: %w", err)
	}

	return tx.Commit()
}

// CreateChat initializes a new chat conversation in SQLite
func (s *SQLiteChatHistoryStorage) CreateChat(ctx context.Context) (*ChatHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := &ChatHistory{
		UUID:      uuid.New(),
		Messages:  []ChatHistoryMessage{},
		CreatedAt: time.Now().UTC(),
	}

	insertSQL := `INSERT INTO chats (uuid, created_at) VALUES (?, ?)`

	_, err := s.db.ExecContext(ctx, insertSQL, chat.UUID.String(), chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert new chat (uuid: %s): %w", chat.UUID, err)
	}

	return chat, nil
}

// AddMessage adds a new message to an existing conversation in SQLite
func (s *SQLiteChatHistoryStorage) AddMessage(ctx context.Context, chatUUID uuid.UUID, message ChatHistoryMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for adding message: %w", err)
	}
	defer tx.Rollback()

	var exists int
	checkSQL := `SELECT 1 FROM chats WHERE uuid = ? LIMIT 1`
	err = tx.QueryRowContext(ctx, checkSQL, chatUUID.String()).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("chat with ID %s not found", chatUUID)
		}
		return fmt.Errorf("failed to check chat existence (uuid: %s): %w", chatUUID, err)
	}

	if message.GeneratedAt.IsZero() {
		message.GeneratedAt = time.Now().UTC()
	}

	insertSQL := `INSERT INTO messages (chat_uuid, role, text, generated_at, input_token, output_token) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insertSQL, chatUUID.String(), string(message.Role), message.Text, message.GeneratedAt, message.InputToken, message.OutputToken)
	if err != nil {
		return fmt.Errorf("failed to insert message for chat %s: %w", chatUUID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for adding message: %w", err)
	}

	return nil
}

// GetChat retrieves a conversation by its UUID from SQLite
func (s *SQLiteChatHistoryStorage) GetChat(ctx context.Context, chatUUID uuid.UUID) (*ChatHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat := &ChatHistory{
		UUID:     chatUUID,
		Messages: []ChatHistoryMessage{},
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction for getting chat: %w", err)
	}
	defer tx.Rollback()

	chatSQL := `SELECT created_at FROM chats WHERE uuid = ?`
	err = tx.QueryRowContext(ctx, chatSQL, chatUUID.String()).Scan(&chat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat with ID %s not found", chatUUID)
		}
		return nil, fmt.Errorf("failed to query chat metadata (uuid: %s): %w", chatUUID, err)
	}

	messagesSQL := `SELECT role, text, generated_at, input_token, output_token FROM messages WHERE chat_uuid = ? ORDER BY id ASC`
	rows, err := tx.QueryContext(ctx, messagesSQL, chatUUID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for chat %s: %w", chatUUID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg ChatHistoryMessage
		var roleStr string
		if err := rows.Scan(&roleStr, &msg.Text, &msg.GeneratedAt, &msg.InputToken, &msg.OutputToken); err != nil {
			return nil, fmt.Errorf("failed to scan message row for chat %s: %w", chatUUID, err)
		}
		msg.Role = LLMMessageRole(roleStr)
		chat.Messages = append(chat.Messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows for chat %s: %w", chatUUID, err)
	}

	return chat, nil
}

// ListChatHistories returns all stored conversations from SQLite
func (s *SQLiteChatHistoryStorage) ListChatHistories(ctx context.Context) ([]ChatHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction for listing chats: %w", err)
	}
	defer tx.Rollback()

	chatsSQL := `SELECT uuid, created_at FROM chats ORDER BY created_at ASC`
	chatRows, err := tx.QueryContext(ctx, chatsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats list: %w", err)
	}
	defer chatRows.Close()

	histories := make(map[uuid.UUID]*ChatHistory)
	var order []uuid.UUID
	for chatRows.Next() {
		var uuidStr string
		var createdAt time.Time
		if err := chatRows.Scan(&uuidStr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		chatUUID, err := uuid.Parse(uuidStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chat uuid %q: %w", uuidStr, err)
		}
		histories[chatUUID] = &ChatHistory{
			UUID:      chatUUID,
			CreatedAt: createdAt.UTC(),
			Messages:  []ChatHistoryMessage{},
		}
		order = append(order, chatUUID)
	}
	if err = chatRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}

	if len(histories) == 0 {
		return []ChatHistory{}, nil
	}

	messagesSQL := `SELECT chat_uuid, role, text, generated_at, input_token, output_token FROM messages ORDER BY chat_uuid, id ASC`
	msgRows, err := tx.QueryContext(ctx, messagesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query all messages: %w", err)
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var chatUUIDStr string
		var roleStr string
		var msg ChatHistoryMessage
		if err := msgRows.Scan(&chatUUIDStr, &roleStr, &msg.Text, &msg.GeneratedAt, &msg.InputToken, &msg.OutputToken); err != nil {
			return nil, fmt.Errorf("failed to scan message row during list: %w", err)
		}

		chatUUID, err := uuid.Parse(chatUUIDStr)
		if err != nil {
			continue
		}
		if chat, ok := histories[chatUUID]; ok {
			msg.Role = LLMMessageRole(roleStr)
			chat.Messages = append(chat.Messages, msg)
		}
	}
	if err = msgRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows during list: %w", err)
	}

	result := make([]ChatHistory, 0, len(order))
	for _, chatUUID := range order {
		result = append(result, *histories[chatUUID])
	}

	return result, nil
}

// DeleteChat removes a conversation by its UUID from SQLite
func (s *SQLiteChatHistoryStorage) DeleteChat(ctx context.Context, chatUUID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for deleting chat: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_uuid = ?`, chatUUID.String()); err != nil {
		return fmt.Errorf("failed to delete messages for chat %s: %w", chatUUID, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE uuid = ?`, chatUUID.String())
	if err != nil {
		return fmt.Errorf("failed to delete chat (uuid: %s): %w", chatUUID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.WithErr(err).Error("failed to get rows affected for delete chat")
	}

	if rowsAffected == 0 {
		return fmt.Errorf("chat with ID %s not found", chatUUID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for deleting chat: %w", err)
	}

	return nil
}

// Close releases the database connection.
func (s *SQLiteChatHistoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
