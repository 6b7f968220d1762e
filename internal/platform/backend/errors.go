package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed upstream call.
type Kind string

const (
	// KindTransport covers connection, DNS and timeout failures.
	KindTransport Kind = "transport"
	// KindCanceled means the caller's context ended before the call finished.
	KindCanceled Kind = "canceled"
	// KindNotFound maps HTTP 404.
	KindNotFound Kind = "not_found"
	// KindConflict maps HTTP 409.
	KindConflict Kind = "conflict"
	// KindValidation maps HTTP 400 and 422.
	KindValidation Kind = "validation"
	// KindStatus covers every other non-2xx response.
	KindStatus Kind = "status"
	// KindDecode means a 2xx body could not be decoded.
	KindDecode Kind = "decode"
)

// Error is the single failure shape returned by every data-access call.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, or "" when err is not a backend error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// IsKind reports whether err is a backend error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the server supplied message carried by err, if any.
func MessageOf(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindStatus
	}
}

func transportError(ctx context.Context, op string, err error) *Error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &Error{Op: op, Kind: KindCanceled, Err: err}
	}
	return &Error{Op: op, Kind: KindTransport, Err: err}
}

// extractMessage walks the upstream error payload conventions in order:
// error.message, message, error (as a string).
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if raw, ok := payload["error"]; ok {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
			return strings.TrimSpace(nested.Message)
		}
	}
	if raw, ok := payload["message"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	if raw, ok := payload["error"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
