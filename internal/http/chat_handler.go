package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deepcrawler/internal/service"
)

// crawlerProxy reenvía un prompt al crawler y devuelve su JSON sin normalizar.
type crawlerProxy interface {
	Forward(ctx context.Context, prompt string) (json.RawMessage, error)
}

// ChatHandler expone el orquestador de chat y el proxy directo al crawler.
type ChatHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
	proxy    crawlerProxy
}

func NewChatHandler(logger *zap.Logger, chatServ *service.ChatService, proxy crawlerProxy) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		chatServ: chatServ,
		proxy:    proxy,
	}
}

// Send maneja POST /api/chats.
func (h *ChatHandler) Send(c *gin.Context) {
	var req struct {
		Prompt    string          `json:"prompt"`
		SessionID json.RawMessage `json:"sessionId"`
		UserEmail string          `json:"userEmail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "chat", err)
		return
	}

	sessionID, err := parseOptionalID(req.SessionID)
	if err != nil {
		respondError(c, h.logger, "chat", service.ErrInvalidInput)
		return
	}

	res, err := h.chatServ.Send(c.Request.Context(), service.SendInput{
		Prompt:    req.Prompt,
		SessionID: sessionID,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		respondError(c, h.logger, "chat", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// History maneja GET /api/chats/history?email=.
func (h *ChatHandler) History(c *gin.Context) {
	summaries, err := h.chatServ.History(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, h.logger, "chat history", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// Transcript maneja GET /api/chats/:sessionId.
func (h *ChatHandler) Transcript(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("sessionId"), 10, 64)
	if err != nil {
		respondError(c, h.logger, "chat transcript", service.ErrInvalidInput)
		return
	}
	tr, err := h.chatServ.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, "chat transcript", err)
		return
	}
	c.JSON(http.StatusOK, tr)
}

// Proxy maneja POST /api/crawler: reenvía el prompt y devuelve la respuesta tal cual.
func (h *ChatHandler) Proxy(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "crawler", err)
		return
	}
	raw, err := h.proxy.Forward(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, h.logger, "crawler", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// parseOptionalID acepta un id numérico, un string con dígitos, o null/ausente.
func parseOptionalID(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil {
		return &id, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
