package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"deepcrawler/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) error
	GetByID(ctx context.Context, id int64) (domain.ChatSession, error)
	// ListByUser devuelve las sesiones del usuario, la más reciente primero,
	// con el contenido de su último mensaje.
	ListByUser(ctx context.Context, userID int64) ([]domain.SessionSummary, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	const query = `
		INSERT INTO chat_sessions (user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	err := r.pool.QueryRow(ctx, query,
		session.UserID,
		session.Title,
		session.CreatedAt,
		session.UpdatedAt,
	).Scan(&session.ID)
	return mapPgError(err)
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id int64) (domain.ChatSession, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`
	var session domain.ChatSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.Title,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return domain.ChatSession{}, mapPgError(err)
	}
	return session, nil
}

func (r *PgSessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.SessionSummary, error) {
	const query = `
		SELECT s.id, s.title, s.created_at,
			(
				SELECT m.content
				FROM chat_messages m
				WHERE m.session_id = s.id
				ORDER BY m.created_at DESC, m.id DESC
				LIMIT 1
			) AS last_message_content
		FROM chat_sessions s
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.SessionSummary{}
	for rows.Next() {
		var s domain.SessionSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.LastMessageContent); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
