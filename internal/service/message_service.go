package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

// MessageService persiste y lista los turnos de una sesión.
type MessageService struct {
	repo repository.MessageRepository
}

var ErrMessageInvalidInput = errors.New("message invalid input")

func NewMessageService(repo repository.MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

// Append guarda un turno. El rol se normaliza ("ai" pasa a "assistant").
func (s *MessageService) Append(ctx context.Context, sessionID int64, role, content string) (domain.ChatMessage, error) {
	if s == nil || s.repo == nil {
		return domain.ChatMessage{}, ErrNotConfigured
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", ErrMessageInvalidInput, err)
	}
	if sessionID <= 0 || strings.TrimSpace(content) == "" {
		return domain.ChatMessage{}, ErrMessageInvalidInput
	}

	msg := domain.ChatMessage{
		SessionID: sessionID,
		Role:      parsedRole,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &msg); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) ListBySession(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotConfigured
	}
	if sessionID <= 0 {
		return []domain.ChatMessage{}, nil
	}
	msgs, err := s.repo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return msgs, nil
}
