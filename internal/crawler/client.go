package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// Gateway es lo que el orquestador necesita del servicio crawler.
type Gateway interface {
	Ask(ctx context.Context, prompt string) (Answer, error)
}

// Answer es la respuesta del crawler: el JSON crudo y el texto normalizado.
type Answer struct {
	Raw  json.RawMessage
	Text string
}

// Client habla con el servicio crawler por HTTP.
type Client struct {
	apiURL    string
	healthURL string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient construye un cliente contra apiURL (POST {prompt}) y healthURL (GET).
func NewClient(apiURL, healthURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiURL:    strings.TrimRight(apiURL, "/"),
		healthURL: healthURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

// Ask envía el prompt y normaliza la respuesta.
func (c *Client) Ask(ctx context.Context, prompt string) (Answer, error) {
	raw, err := c.Forward(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}

	text, rule, matched := ExtractText(raw)
	if !matched {
		c.logger.Warn("crawler response shape not recognized, using raw body",
			zap.Int("bytes", len(raw)))
	} else {
		c.logger.Debug("crawler response extracted", zap.String("rule", rule))
	}
	return Answer{Raw: raw, Text: text}, nil
}

// Forward envía el prompt y devuelve el body JSON del crawler sin tocar.
func (c *Client) Forward(ctx context.Context, prompt string) (json.RawMessage, error) {
	bodyBytes, err := json.Marshal(askRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("crawler unreachable", zap.String("url", c.apiURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("crawler error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 512)),
		)
		return nil, newUpstreamError(resp.StatusCode, respBody)
	}

	if !json.Valid(respBody) {
		c.logger.Warn("crawler returned non-JSON body", zap.Int("status", resp.StatusCode))
		return nil, newUpstreamError(resp.StatusCode, respBody)
	}

	return json.RawMessage(respBody), nil
}

// Health consulta el endpoint de salud del crawler.
func (c *Client) Health(ctx context.Context) error {
	if c.healthURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err != nil {
			c.logger.Warn("crawler health body unreadable", zap.Int("status", resp.StatusCode), zap.Error(err))
			body = nil
		}
		return newUpstreamError(resp.StatusCode, body)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
