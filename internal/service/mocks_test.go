package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"deepcrawler/internal/crawler"
	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

type mockUserRepo struct {
	mu        sync.Mutex
	nextID    int64
	usersByID map[int64]domain.User
	getErr    error
	updateErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{usersByID: make(map[int64]domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.usersByID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.usersByID[user.ID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.User{}, m.getErr
	}
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.User{}, m.getErr
	}
	for _, u := range m.usersByID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, id int64, update domain.UserUpdate) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return domain.User{}, m.updateErr
	}
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.Image != nil {
		user.Image = update.Image
	}
	user.UpdatedAt = time.Now().UTC()
	m.usersByID[id] = user
	return user, nil
}

type mockSessionRepo struct {
	nextID   int64
	sessions map[int64]domain.ChatSession
	messages *mockMessageRepo
}

func newMockSessionRepo(messages *mockMessageRepo) *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[int64]domain.ChatSession), messages: messages}
}

func (m *mockSessionRepo) Create(_ context.Context, session *domain.ChatSession) error {
	m.nextID++
	session.ID = m.nextID
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	m.sessions[session.ID] = *session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id int64) (domain.ChatSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return domain.ChatSession{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionRepo) ListByUser(_ context.Context, userID int64) ([]domain.SessionSummary, error) {
	var out []domain.SessionSummary
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		summary := domain.SessionSummary{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt}
		if msgs := m.messages.bySession[s.ID]; len(msgs) > 0 {
			last := msgs[len(msgs)-1].Content
			summary.LastMessageContent = &last
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type mockMessageRepo struct {
	nextID    int64
	bySession map[int64][]domain.ChatMessage
	createErr error
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{bySession: make(map[int64][]domain.ChatMessage)}
}

func (m *mockMessageRepo) Create(_ context.Context, message *domain.ChatMessage) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	message.ID = m.nextID
	m.bySession[message.SessionID] = append(m.bySession[message.SessionID], *message)
	return nil
}

func (m *mockMessageRepo) ListBySessionID(_ context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	return append([]domain.ChatMessage(nil), m.bySession[sessionID]...), nil
}

func (m *mockMessageRepo) count() int {
	n := 0
	for _, msgs := range m.bySession {
		n += len(msgs)
	}
	return n
}

var _ crawler.Gateway = (*crawler.MockGateway)(nil)
