package http

import (
	"net/http"

	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/pkg/httpx"
)

// PasswordResetHandler handles the reset-request and reset endpoints.
type PasswordResetHandler struct {
	AuthService *service.AuthService
}

// HandleRequest handles POST /v1/auth/request-password-reset
//
//	@Summary		Request a password reset
//	@Description	Emails a short-lived reset link to the account.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EmailPayload	true	"Account email"
//	@Success		200		{object}	httpx.Message	"Reset link sent"
//	@Failure		404		{object}	ErrorResponse	"Unknown email"
//	@Failure		422		{object}	ErrorResponse	"Malformed request"
//	@Router			/v1/auth/request-password-reset [post].
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var payload EmailPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.AuthService.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.Message{
		Message: "A password reset link has been sent to your email.",
	})
}

// HandleReset handles POST /v1/auth/reset-password
//
//	@Summary		Reset the password
//	@Description	Consumes the reset token from the emailed link and replaces the password.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			token	query		string					true	"Reset token"
//	@Param			request	body		PasswordResetPayload	true	"New password, twice"
//	@Success		200		{object}	httpx.Message			"Password replaced"
//	@Failure		400		{object}	ErrorResponse			"Confirmation or policy failure"
//	@Failure		401		{object}	ErrorResponse			"Expired or invalid token"
//	@Failure		422		{object}	ErrorResponse			"Malformed request"
//	@Router			/v1/auth/reset-password [post].
func (h *PasswordResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	token, err := queryToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload PasswordResetPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	_, err = h.AuthService.PasswordReset(r.Context(), token, payload.PasswordOne, payload.PasswordTwo)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.Message{
		Message: "Password has been reset successfully.",
	})
}
