package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"deepcrawler/internal/crawler"
	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

// ChatService orquesta un turno de chat: usuario, sesión, crawler y transcripción.
type ChatService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	sessions repository.SessionRepository
	messages *MessageService
	gateway  crawler.Gateway
}

func NewChatService(
	logger *zap.Logger,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	messages *MessageService,
	gateway crawler.Gateway,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		logger:   logger,
		users:    users,
		sessions: sessions,
		messages: messages,
		gateway:  gateway,
	}
}

type SendInput struct {
	Prompt    string
	SessionID *int64
	UserEmail string
}

type ChatResult struct {
	CrawlerResponse json.RawMessage      `json:"crawlerResponse"`
	SessionID       int64                `json:"sessionId"`
	SessionTitle    string               `json:"sessionTitle"`
	Messages        []domain.ChatMessage `json:"messages"`
	Answer          string               `json:"-"`
}

// Send registra el prompt, consulta al crawler y guarda la respuesta.
// Si el crawler falla, el turno del usuario queda guardado y se devuelve el error del crawler.
func (s *ChatService) Send(ctx context.Context, input SendInput) (ChatResult, error) {
	if s == nil || s.users == nil || s.sessions == nil || s.messages == nil || s.gateway == nil {
		return ChatResult{}, ErrNotConfigured
	}

	// se guarda y se envía tal cual; el recorte solo valida y titula
	prompt := input.Prompt
	email := normalizeEmail(input.UserEmail)
	if strings.TrimSpace(prompt) == "" || email == "" {
		return ChatResult{}, ErrInvalidInput
	}

	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return ChatResult{}, err
	}

	session, err := s.resolveSession(ctx, user, input.SessionID, prompt)
	if err != nil {
		return ChatResult{}, err
	}

	if _, err := s.messages.Append(ctx, session.ID, string(domain.RoleUser), prompt); err != nil {
		return ChatResult{}, fmt.Errorf("record user turn: %w", err)
	}

	answer, err := s.gateway.Ask(ctx, prompt)
	if err != nil {
		s.logger.Warn("crawler call failed",
			zap.Int64("session_id", session.ID),
			zap.Error(err),
		)
		return ChatResult{}, fmt.Errorf("ask crawler: %w", err)
	}

	content := answer.Text
	if strings.TrimSpace(content) == "" {
		content = string(answer.Raw)
	}
	if _, err := s.messages.Append(ctx, session.ID, string(domain.RoleAssistant), content); err != nil {
		return ChatResult{}, fmt.Errorf("record assistant turn: %w", err)
	}

	msgs, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return ChatResult{}, err
	}

	return ChatResult{
		CrawlerResponse: answer.Raw,
		SessionID:       session.ID,
		SessionTitle:    session.Title,
		Messages:        msgs,
		Answer:          content,
	}, nil
}

// History lista las sesiones del usuario, la más reciente primero.
func (s *ChatService) History(ctx context.Context, email string) ([]domain.SessionSummary, error) {
	if s == nil || s.users == nil || s.sessions == nil {
		return nil, ErrNotConfigured
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	summaries, err := s.sessions.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if summaries == nil {
		summaries = []domain.SessionSummary{}
	}
	return summaries, nil
}

func (s *ChatService) Transcript(ctx context.Context, sessionID int64) (domain.Transcript, error) {
	if s == nil || s.sessions == nil || s.messages == nil {
		return domain.Transcript{}, ErrNotConfigured
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Transcript{}, ErrSessionNotFound
		}
		return domain.Transcript{}, fmt.Errorf("get session: %w", err)
	}
	msgs, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return domain.Transcript{}, err
	}
	return domain.Transcript{
		SessionID:    session.ID,
		SessionTitle: session.Title,
		Messages:     msgs,
	}, nil
}

func (s *ChatService) resolveUser(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *ChatService) resolveSession(ctx context.Context, user domain.User, sessionID *int64, prompt string) (domain.ChatSession, error) {
	if sessionID != nil {
		session, err := s.sessions.GetByID(ctx, *sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ChatSession{}, ErrSessionNotFound
			}
			return domain.ChatSession{}, fmt.Errorf("get session: %w", err)
		}
		// sesiones ajenas se tratan como inexistentes
		if session.UserID != user.ID {
			return domain.ChatSession{}, ErrSessionNotFound
		}
		return session, nil
	}

	session := domain.ChatSession{
		UserID: user.ID,
		Title:  domain.TitleFromPrompt(prompt),
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return domain.ChatSession{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info("chat session created",
		zap.Int64("session_id", session.ID),
		zap.Int64("user_id", user.ID),
	)
	return session, nil
}
