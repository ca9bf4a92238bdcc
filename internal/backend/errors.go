package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrPayloadTooLarge is returned when the backend refuses an upload with 413.
var ErrPayloadTooLarge = errors.New("file is too large for the server")

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// StatusError is returned for any unexpected non-2xx response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

// ValidationError carries a message produced by the backend that is meant to
// be shown to the user as is.
type ValidationError struct {
	Code   int
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func newStatusError(resp *http.Response) *StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Body:   strings.TrimSpace(string(data)),
	}
}

// detailFrom extracts the "detail" field of an error body. Validation
// failures may carry a list of objects with "msg" fields instead of a string.
func detailFrom(body string) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}

	switch typed := payload.Detail.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		msgs := make([]string, 0, len(typed))
		for _, item := range typed {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && msg != "" {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	default:
		return ""
	}
}
