package http

import (
	"net/http"

	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/pkg/httpx"
)

// SignInHandler handles credential login, the TOTP follow-up, and access
// token refresh.
type SignInHandler struct {
	AuthService *service.AuthService
}

// HandleSignIn handles POST /v1/auth/sign-in
//
//	@Summary		Log in with username and password
//	@Description	Returns an access/refresh token pair, or a short-lived temp token with requires_2fa set when the account has 2FA enabled.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignInPayload		true	"Credentials"
//	@Success		200		{object}	domain.LoginResult	"Tokens"
//	@Failure		401		{object}	ErrorResponse		"Incorrect username or password"
//	@Failure		422		{object}	ErrorResponse		"Malformed request"
//	@Router			/v1/auth/sign-in [post].
func (h *SignInHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var payload SignInPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.AuthService.LogIn(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleSignInMFA handles POST /v1/auth/sign-in-mfa
//
//	@Summary		Complete a two-factor login
//	@Description	Exchanges the temp token from sign-in plus a TOTP code for the access/refresh pair.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			token	query		string				true	"Temp 2FA token from sign-in"
//	@Param			request	body		Verify2FAPayload	true	"TOTP code"
//	@Success		200		{object}	domain.LoginResult	"Tokens"
//	@Failure		401		{object}	ErrorResponse		"Bad token or TOTP code"
//	@Failure		422		{object}	ErrorResponse		"Malformed request"
//	@Router			/v1/auth/sign-in-mfa [post].
func (h *SignInHandler) HandleSignInMFA(w http.ResponseWriter, r *http.Request) {
	token, err := queryToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload Verify2FAPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.AuthService.LogIn2FA(r.Context(), token, payload.TOTPToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleAccess handles POST /v1/auth/access
//
//	@Summary		Mint a fresh access token
//	@Description	Issues a new access token for the identity inside any valid, unexpired token.
//	@Tags			Authentication
//	@Produce		json
//	@Param			token	query		string				true	"Refresh token"
//	@Success		200		{object}	domain.IssuedToken	"Access token"
//	@Failure		401		{object}	ErrorResponse		"Expired or invalid token"
//	@Failure		422		{object}	ErrorResponse		"Missing token"
//	@Router			/v1/auth/access [post].
func (h *SignInHandler) HandleAccess(w http.ResponseWriter, r *http.Request) {
	token, err := queryToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	access, err := h.AuthService.AccessToken(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, access)
}
