package http

import (
	"net/http"

	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/pkg/httpx"
)

// SignUpHandler handles account registration.
type SignUpHandler struct {
	AuthService *service.AuthService
}

// Handle handles POST /v1/auth/sign-up
//
//	@Summary		Register a new account
//	@Description	Creates an inactive account and emails an activation link. The account cannot log in until activated.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignUpPayload	true	"Sign-up form"
//	@Success		201		{object}	httpx.Message	"Check your email"
//	@Failure		400		{object}	ErrorResponse	"Password policy violation"
//	@Failure		409		{object}	ErrorResponse	"Username or email taken"
//	@Failure		422		{object}	ErrorResponse	"Malformed request"
//	@Router			/v1/auth/sign-up [post].
func (h *SignUpHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload SignUpPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	_, err := h.AuthService.SignUp(r.Context(), service.SignUpRequest{
		Username:        payload.Username,
		Email:           payload.Email,
		Password:        payload.PasswordOne,
		PasswordConfirm: payload.PasswordTwo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, httpx.Message{
		Message: "User created successfully. Please check your email to activate your account.",
	})
}
