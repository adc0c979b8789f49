package http

import (
	"net/http"

	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/pkg/httpx"
)

// ActivationHandler handles account activation and activation-email reissue.
type ActivationHandler struct {
	AuthService *service.AuthService
}

// HandleActivate handles GET /v1/auth/activate-account
//
//	@Summary		Activate an account
//	@Description	Consumes the activation token from the emailed link and marks the account active.
//	@Tags			Authentication
//	@Produce		json
//	@Param			token	query		string			true	"Activation token"
//	@Success		200		{object}	httpx.Message	"Account activated"
//	@Failure		400		{object}	ErrorResponse	"Already active"
//	@Failure		401		{object}	ErrorResponse	"Expired or invalid token"
//	@Failure		404		{object}	ErrorResponse	"Unknown user"
//	@Router			/v1/auth/activate-account [get].
func (h *ActivationHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	token, err := queryToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.AuthService.ActivateAccount(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.Message{
		Message: "Account activated successfully. You can now log in.",
	})
}

// HandleSendEmail handles POST /v1/auth/send-activation-email
//
//	@Summary		Resend the activation email
//	@Description	Issues a fresh activation token for an inactive account and emails it.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EmailPayload	true	"Account email"
//	@Success		200		{object}	httpx.Message	"Email sent"
//	@Failure		400		{object}	ErrorResponse	"Already active"
//	@Failure		404		{object}	ErrorResponse	"Unknown email"
//	@Failure		422		{object}	ErrorResponse	"Malformed request"
//	@Router			/v1/auth/send-activation-email [post].
func (h *ActivationHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	var payload EmailPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.AuthService.SendActivationEmail(r.Context(), payload.Email); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.Message{
		Message: "Activation email sent successfully. Please check your email.",
	})
}
