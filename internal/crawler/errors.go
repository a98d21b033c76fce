package crawler

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUpstream marca respuestas no-2xx (o ilegibles) del servicio crawler.
	ErrUpstream = errors.New("crawler upstream error")
	// ErrUnavailable marca fallos de transporte: no llegó ninguna respuesta.
	ErrUnavailable = errors.New("crawler service unreachable")
)

// UpstreamError conserva el status y el body que devolvió el crawler.
type UpstreamError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("crawler upstream error: status=%d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// newUpstreamError guarda el body tal cual si es JSON; si no, como string JSON.
func newUpstreamError(status int, body []byte) *UpstreamError {
	var raw json.RawMessage
	switch {
	case len(body) == 0:
	case json.Valid(body):
		raw = json.RawMessage(body)
	default:
		raw, _ = json.Marshal(string(body))
	}
	return &UpstreamError{StatusCode: status, Body: raw}
}
