package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

var _ repository.SessionRepository = (*SessionRepository)(nil)

type SessionRepository struct {
	conn *sql.DB
}

func NewSessionRepository(conn *sql.DB) *SessionRepository {
	return &SessionRepository{conn: conn}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	now := time.Now().UTC()
	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO chat_sessions (user_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		session.UserID,
		session.Title,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading session id: %w", err)
	}
	session.ID = id
	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chat_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.ChatSession{}, mapError(err)
	}
	return s, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.SessionSummary, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT s.id, s.title, s.created_at,
			(
				SELECT m.content
				FROM chat_messages m
				WHERE m.session_id = s.id
				ORDER BY m.created_at DESC, m.id DESC
				LIMIT 1
			) AS last_message_content
		 FROM chat_sessions s
		 WHERE s.user_id = ?
		 ORDER BY s.created_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing sessions for user %d: %w", userID, err)
	}
	defer rows.Close()

	summaries := []domain.SessionSummary{}
	for rows.Next() {
		var s domain.SessionSummary
		var last sql.NullString
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &last); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session: %w", err)
		}
		if last.Valid {
			s.LastMessageContent = &last.String
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
