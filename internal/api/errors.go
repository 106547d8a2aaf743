package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotAuthenticated = stderrors.New("no access token stored")

// Error is a non-2xx answer of the platform API. Its message is the server
// payload rendered as compact JSON, which is what users see in notifications.
type Error struct {
	Status  int
	Payload json.RawMessage
}

func (e *Error) Error() string {
	return stringify(e.Payload)
}

// Field returns a top-level string field of the payload, if present.
func (e *Error) Field(name string) string {
	var m map[string]any
	if err := json.Unmarshal(e.Payload, &m); err != nil {
		return ""
	}
	if s, ok := m[name].(string); ok {
		return s
	}
	return ""
}

func newError(status int, body []byte) *Error {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		// plain text or HTML error pages become a JSON string
		quoted, _ := json.Marshal(string(body))
		body = quoted
	}
	return &Error{Status: status, Payload: json.RawMessage(body)}
}

func stringify(payload json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return strings.TrimSpace(string(payload))
	}
	return buf.String()
}

// Message is the user-facing text of an error returned by the Client: the
// stringified payload for server errors, the raw cause for transport failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return errors.Cause(err).Error()
}

// IsStatus reports whether err is a server error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return stderrors.As(err, &apiErr) && apiErr.Status == status
}
