package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/inventory-admin/internal/platform/backend"
	"github.com/odyssey-erp/inventory-admin/internal/shared"
)

// RespondError maps an error to an RFC7807 response. Input errors become
// 400, upstream failures keep their meaning, anything else is a 502.
func RespondError(w http.ResponseWriter, err error) {
	detail := shared.UserSafeMessage(err)
	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", detail)
	case backend.IsKind(err, backend.KindNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail)
	case backend.IsKind(err, backend.KindConflict):
		Problem(w, http.StatusConflict, "Conflict", detail)
	case backend.IsKind(err, backend.KindValidation):
		Problem(w, http.StatusUnprocessableEntity, "Rejected Upstream", detail)
	case backend.IsKind(err, backend.KindCanceled):
		Problem(w, http.StatusGatewayTimeout, "Upstream Timeout", detail)
	default:
		Problem(w, http.StatusBadGateway, "Upstream Error", detail)
	}
}
