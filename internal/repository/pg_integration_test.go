//go:build integration

package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepcrawler/internal/db"
	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

// Requiere Postgres: DATABASE_URL=... go test -tags integration ./internal/repository/
func newPgRepos(t *testing.T) (*repository.PgUserRepository, *repository.PgSessionRepository, *repository.PgMessageRepository) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))

	return repository.NewPgUserRepository(pool), repository.NewPgSessionRepository(pool), repository.NewPgMessageRepository(pool)
}

func createPgUser(t *testing.T, users *repository.PgUserRepository) domain.User {
	t.Helper()
	user := domain.User{
		Username:     "ana",
		Email:        "ana-" + uuid.NewString() + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, users.Create(context.Background(), &user))
	require.NotZero(t, user.ID)
	return user
}

func TestPgUserRepository(t *testing.T) {
	users, _, _ := newPgRepos(t)
	ctx := context.Background()
	user := createPgUser(t, users)

	got, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.Image)

	dup := domain.User{Username: "otra", Email: user.Email, PasswordHash: "x"}
	assert.ErrorIs(t, users.Create(ctx, &dup), repository.ErrDuplicate)

	_, err = users.GetByID(ctx, -1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	name := "ana_maria"
	updated, err := users.Update(ctx, user.ID, domain.UserUpdate{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "ana_maria", updated.Username)
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, "hash", updated.PasswordHash)

	_, err = users.Update(ctx, -1, domain.UserUpdate{Username: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPgSessionRepository_ListByUserLastMessage(t *testing.T) {
	users, sessions, messages := newPgRepos(t)
	ctx := context.Background()
	user := createPgUser(t, users)

	older := domain.ChatSession{UserID: user.ID, Title: "primera"}
	require.NoError(t, sessions.Create(ctx, &older))
	newer := domain.ChatSession{UserID: user.ID, Title: "vacía"}
	require.NoError(t, sessions.Create(ctx, &newer))

	base := time.Now().UTC().Truncate(time.Millisecond)
	for _, m := range []domain.ChatMessage{
		{SessionID: older.ID, Role: domain.RoleUser, Content: "pregunta", CreatedAt: base},
		{SessionID: older.ID, Role: domain.RoleAssistant, Content: "empate 1", CreatedAt: base.Add(time.Second)},
		{SessionID: older.ID, Role: domain.RoleAssistant, Content: "empate 2", CreatedAt: base.Add(time.Second)},
	} {
		msg := m
		require.NoError(t, messages.Create(ctx, &msg))
	}

	summaries, err := sessions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, newer.ID, summaries[0].ID)
	assert.Nil(t, summaries[0].LastMessageContent)
	assert.Equal(t, older.ID, summaries[1].ID)
	require.NotNil(t, summaries[1].LastMessageContent)
	assert.Equal(t, "empate 2", *summaries[1].LastMessageContent)

	list, err := messages.ListBySessionID(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"pregunta", "empate 1", "empate 2"}, []string{list[0].Content, list[1].Content, list[2].Content})

	_, err = sessions.GetByID(ctx, -1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
