package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

var _ repository.MessageRepository = (*MessageRepository)(nil)

type MessageRepository struct {
	conn *sql.DB
}

func NewMessageRepository(conn *sql.DB) *MessageRepository {
	return &MessageRepository{conn: conn}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		message.SessionID,
		string(message.Role),
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting message: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading message id: %w", err)
	}
	message.ID = id
	return nil
}

func (r *MessageRepository) ListBySessionID(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_messages
		 WHERE session_id = ?
		 ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message: %w", err)
		}
		msg.Role = domain.Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
