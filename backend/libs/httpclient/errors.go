package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const maxMessageLen = 200

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	base := fmt.Sprintf("httpclient: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if msg := e.Message(); msg != "" {
		return base + ": " + msg
	}
	return base
}

// Message extracts the server's explanation from an {"error": ...} or {"message": ...}
// body, falling back to the raw text.
func (e *StatusError) Message() string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	text := strings.TrimSpace(string(e.Body))
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen] + "..."
	}
	return text
}
