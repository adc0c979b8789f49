package http

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/sableforge/authd/internal/auth/domain"
)

// SignUpPayload is the sign-up form. PasswordTwo must repeat PasswordOne;
// the strength policy itself is enforced by the service layer.
type SignUpPayload struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PasswordOne string `json:"password_one"`
	PasswordTwo string `json:"password_two"`
}

func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.PasswordOne, validation.Required),
		validation.Field(&p.PasswordTwo, validation.Required),
	)
}

type SignInPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p SignInPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

type Verify2FAPayload struct {
	TOTPToken string `json:"totp_token"`
}

func (p Verify2FAPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TOTPToken, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

type EmailPayload struct {
	Email string `json:"email"`
}

func (p EmailPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

type PasswordResetPayload struct {
	PasswordOne string `json:"password_one"`
	PasswordTwo string `json:"password_two"`
}

func (p PasswordResetPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PasswordOne, validation.Required),
		validation.Field(&p.PasswordTwo, validation.Required),
	)
}

// decodeJSON parses the request body into payload and runs its validation.
// Both failure modes surface as 422s.
func decodeJSON(r *http.Request, payload interface{ Validate() error }) error {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return domain.Validationf("Invalid request body")
	}
	if err := payload.Validate(); err != nil {
		return domain.Validationf("%s", err.Error())
	}
	return nil
}

// queryToken extracts the mandatory token query parameter.
func queryToken(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return "", domain.Validationf("token: cannot be blank.")
	}
	return token, nil
}
