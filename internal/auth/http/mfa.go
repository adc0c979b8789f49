package http

import (
	"net/http"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/pkg/httpx"
)

// MFAHandler handles the 2FA toggles. Both routes sit behind requireBearer.
type MFAHandler struct {
	MFAService *service.MFAService
}

// Enable2FAResponse carries the one-time secret disclosure.
type Enable2FAResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	Message         string `json:"message"`
}

// HandleEnable handles POST /v1/auth/enable-2fa
//
//	@Summary		Enable TOTP 2FA
//	@Description	Generates a TOTP secret for the authenticated user. The secret and provisioning URI are returned exactly once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	Enable2FAResponse	"Secret and otpauth URI"
//	@Failure		401	{object}	ErrorResponse		"Invalid or missing access token"
//	@Failure		409	{object}	ErrorResponse		"2FA already enabled"
//	@Router			/v1/auth/enable-2fa [post].
func (h *MFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := identityFrom(ctx)
	if !ok {
		writeError(w, r, domain.Unauthorizedf("Not authenticated"))
		return
	}

	enrollment, err := h.MFAService.Enable2FA(ctx, id.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, Enable2FAResponse{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
		Message:         "2FA enabled. Scan with your app.",
	})
}

// HandleDisable handles POST /v1/auth/disable-2fa
//
//	@Summary		Disable TOTP 2FA
//	@Description	Clears the 2FA flag and secret for the authenticated user.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.Message	"2FA disabled"
//	@Failure		401	{object}	ErrorResponse	"Invalid or missing access token"
//	@Failure		409	{object}	ErrorResponse	"2FA not enabled"
//	@Router			/v1/auth/disable-2fa [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := identityFrom(ctx)
	if !ok {
		writeError(w, r, domain.Unauthorizedf("Not authenticated"))
		return
	}

	if err := h.MFAService.Disable2FA(ctx, id.Username); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "2FA disabled"})
}
