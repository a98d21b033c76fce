package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxSessionTitleLength es el largo máximo del título, en caracteres.
	MaxSessionTitleLength = 100
	DefaultSessionTitle   = "Nueva Conversación"
)

type ChatSession struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionSummary es una fila del historial: la sesión más el contenido de su último mensaje.
// LastMessageContent es nil cuando la sesión no tiene mensajes.
type SessionSummary struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	CreatedAt          time.Time `json:"createdAt"`
	LastMessageContent *string   `json:"lastMessageContent"`
}

// Transcript es una sesión con todos sus mensajes, del más antiguo al más reciente.
type Transcript struct {
	SessionID    int64         `json:"sessionId"`
	SessionTitle string        `json:"sessionTitle"`
	Messages     []ChatMessage `json:"messages"`
}

// TitleFromPrompt deriva el título de una sesión nueva a partir del primer prompt.
func TitleFromPrompt(prompt string) string {
	title := strings.TrimSpace(prompt)
	if title == "" {
		return DefaultSessionTitle
	}
	if utf8.RuneCountInString(title) <= MaxSessionTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxSessionTitleLength])
}
