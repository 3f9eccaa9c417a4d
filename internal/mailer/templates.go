package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Renderer turns domain events into email messages.
type Renderer struct {
	ProjectName string
	BaseURI     string
	ResetExpire time.Duration
}

// NewAccount renders the registration confirmation email.
func (r Renderer) NewAccount(to, username, verificationID string) (Message, error) {
	link := fmt.Sprintf("%s/api/v1/auth/confirm-registration/%s", r.BaseURI, verificationID)
	body, err := render("new_account.html", map[string]interface{}{
		"ProjectName": r.ProjectName,
		"Username":    username,
		"Email":       to,
		"Link":        link,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: fmt.Sprintf("%s - confirm your account", r.ProjectName), HTMLBody: body}, nil
}

// PasswordReset renders the password recovery email carrying token.
func (r Renderer) PasswordReset(to, username, token string) (Message, error) {
	body, err := render("reset_password.html", map[string]interface{}{
		"ProjectName": r.ProjectName,
		"Username":    username,
		"Email":       to,
		"Token":       token,
		"ValidHours":  int(r.ResetExpire.Hours()),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: fmt.Sprintf("%s - password recovery for user %s", r.ProjectName, username), HTMLBody: body}, nil
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
