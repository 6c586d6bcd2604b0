package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the typed error for any non-2xx backend response.
type APIError struct {
	Status    int
	Message   string
	Forbidden bool // 403: authorization / anti-forgery failure
	Body      []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a session-expiry (401) response.
func IsUnauthorized(err error) bool {
	var api *APIError
	return errors.As(err, &api) && api.Status == http.StatusUnauthorized
}

// IsForbidden reports whether err is an authorization/CSRF (403) response.
func IsForbidden(err error) bool {
	var api *APIError
	return errors.As(err, &api) && api.Forbidden
}

// extractMessage pulls a human message out of an error body: JSON with a
// "message" or "mensaje" field, else the raw text, else a synthesized one.
func extractMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
		Mensaje string `json:"mensaje"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Mensaje != "" {
			return parsed.Mensaje
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return text
	}
	return fmt.Sprintf("HTTP error %d", status)
}
