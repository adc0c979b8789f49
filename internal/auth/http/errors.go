package http

import (
	"net/http"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/pkg/httpx"
	"github.com/sableforge/authd/pkg/slogx"
)

// ErrorResponse is the error envelope for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindApp:
		return http.StatusBadRequest
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors onto their status codes. Anything else is an
// unexpected failure: logged and hidden behind a plain 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if de, ok := domain.AsError(err); ok {
		httpx.WriteJSON(w, statusFor(de.Kind), ErrorResponse{Detail: de.Message})
		return
	}

	slogx.FromContext(r.Context()).Error("request failed", "error", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
}
