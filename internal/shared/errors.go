package shared

import (
	"errors"
	"fmt"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
)

var (
	// ErrValidation marks pre-flight failures that never reach the network.
	ErrValidation = errors.New("validation failed")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// GenericFailureMessage is shown when nothing more specific is known.
const GenericFailureMessage = "Something went wrong. Please try again."

const unreachableMessage = "The server could not be reached. Please try again."

// UserError carries a message that is safe to show as-is.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match every UserError.
func (e *UserError) Is(target error) bool {
	return target == ErrValidation
}

// UserErrorf builds a UserError.
func UserErrorf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// UserSafeMessage turns err into display text: the upstream message when the
// backend supplied one, the text of a UserError, otherwise a generic line.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := backend.MessageOf(err); msg != "" {
		return msg
	}
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	switch backend.KindOf(err) {
	case backend.KindTransport, backend.KindCanceled:
		return unreachableMessage
	}
	return GenericFailureMessage
}
