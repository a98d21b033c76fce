package crawler

import (
	"encoding/json"
)

// extractRule intenta obtener el texto a mostrar de una respuesta ya decodificada.
type extractRule struct {
	name  string
	apply func(body any) (string, bool)
}

// extractRules se evalúan en orden; la primera que matchea gana.
var extractRules = []extractRule{
	{name: "response_text", apply: topLevelText},
	{name: "response.response_text", apply: nestedText},
	{name: "response", apply: nestedString},
}

func topLevelText(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj["response_text"].(string)
	return s, ok
}

func nestedText(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	inner, ok := obj["response"].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := inner["response_text"].(string)
	return s, ok
}

func nestedString(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj["response"].(string)
	return s, ok
}

// ExtractText normaliza el body crudo del crawler a texto plano.
// matched es false cuando ninguna regla aplicó y se devolvió el body serializado.
func ExtractText(raw json.RawMessage) (text string, rule string, matched bool) {
	var body any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, r := range extractRules {
			if s, ok := r.apply(body); ok {
				return s, r.name, true
			}
		}
	}
	return string(raw), "", false
}
