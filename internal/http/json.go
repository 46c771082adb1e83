package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	apperrors "github.com/artisanhub/marketplace-api/internal/errors"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// ErrCodeSessionLookupFailed is returned when the session store could not be consulted.
const ErrCodeSessionLookupFailed = string(domainauth.ReasonSessionLookupFailed)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Message string
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Message})
}

// WriteAuthError maps a validator or gate failure to 401/403 with its stable code and message.
// A lookup failure, or anything that is not an auth failure, fails closed as 401 without a
// challenge since the token itself may be fine.
func WriteAuthError(w http.ResponseWriter, err error) {
	reason := domainauth.ReasonOf(err)
	if reason == "" || reason == domainauth.ReasonSessionLookupFailed {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: ErrCodeSessionLookupFailed,
			Message: domainauth.ReasonSessionLookupFailed.Message(),
		})
		return
	}

	code := http.StatusUnauthorized
	if reason.Forbidden() {
		code = http.StatusForbidden
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	WriteError(w, ErrorParams{Code: code, ErrCode: string(reason), Message: reason.Message()})
}

// WriteAppError maps admin operation failures to HTTP responses.
func WriteAppError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Message: appMessage(err)})
	case errors.Is(err, ports.ErrSessionNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Message: "session not found"})
	case errors.Is(err, ports.ErrUserNotFound), apperrors.IsNotFound(err):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Message: "user not found"})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal",
			Message: http.StatusText(http.StatusInternalServerError),
		})
	}
}

func appMessage(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
