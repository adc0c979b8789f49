package mail

import (
	"fmt"
	"strings"
	"text/template"
)

var (
	activationTmpl = template.Must(template.New("activation").Parse(strings.TrimSpace(`
Hi {{.Name}},

Thanks for signing up. Activate your account within the next 15 minutes
by following this link:

    {{.Link}}

If you did not create this account, you can ignore this email.
`)))

	welcomeTmpl = template.Must(template.New("welcome").Parse(strings.TrimSpace(`
Hi {{.Name}},

Your account is now active. Welcome aboard!
`)))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(strings.TrimSpace(`
Hi {{.Name}},

A password reset was requested for your account. Follow this link within
the next 15 minutes to choose a new password:

    {{.Link}}

If you did not request this, you can ignore this email and your password
will stay unchanged.
`)))
)

type templateData struct {
	Name string
	Link string
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// ActivationMessage builds the account activation email.
func ActivationMessage(to Recipient, activationLink string) (Message, error) {
	body, err := render(activationTmpl, templateData{Name: to.Name, Link: activationLink})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Activate your account", TextBody: body}, nil
}

// WelcomeMessage builds the post-activation welcome email.
func WelcomeMessage(to Recipient) (Message, error) {
	body, err := render(welcomeTmpl, templateData{Name: to.Name})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Welcome!", TextBody: body}, nil
}

// PasswordResetMessage builds the password reset email.
func PasswordResetMessage(to Recipient, resetLink string) (Message, error) {
	body, err := render(passwordResetTmpl, templateData{Name: to.Name, Link: resetLink})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your password", TextBody: body}, nil
}
