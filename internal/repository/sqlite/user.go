package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) *UserRepository {
	return &UserRepository{conn: conn}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Image,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanOne(ctx,
		`SELECT id, username, email, password, image, created_at, updated_at
		 FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanOne(ctx,
		`SELECT id, username, email, password, image, created_at, updated_at
		 FROM users WHERE email = ?`, email)
}

func (r *UserRepository) Update(ctx context.Context, id int64, update domain.UserUpdate) (domain.User, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if update.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *update.Username)
	}
	if update.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *update.Email)
	}
	if update.PasswordHash != nil {
		sets = append(sets, "password = ?")
		args = append(args, *update.PasswordHash)
	}
	if update.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *update.Image)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.conn.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return domain.User{}, fmt.Errorf("sqlite: updating user %d: %w", id, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, fmt.Errorf("sqlite: updating user %d: %w", id, err)
	}
	if n == 0 {
		return domain.User{}, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var u domain.User
	var image sql.NullString
	err := r.conn.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&image,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapError(err)
	}
	if image.Valid {
		u.Image = &image.String
	}
	return u, nil
}
