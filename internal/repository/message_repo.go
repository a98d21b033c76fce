package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"deepcrawler/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) error
	// ListBySessionID devuelve los mensajes en orden de creación; a igual timestamp decide el id.
	ListBySessionID(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		message.SessionID,
		string(message.Role),
		message.Content,
		message.CreatedAt,
	).Scan(&message.ID)
	return mapPgError(err)
}

func (r *PgMessageRepository) ListBySessionID(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	const query = `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = domain.Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
