package auth

import (
	"github.com/flosch/pongo2/v6"
	goerrors "github.com/goliatone/go-errors"
)

const verificationTemplateFile = "data/templates/verification_mail.html"

// MailTemplates renders the HTML bodies the gateway sends. Templates are
// embedded and parsed once; rendering is read only and safe for concurrent
// use.
type MailTemplates struct {
	origin       string
	verification *pongo2.Template
}

// NewMailTemplates creates the template set. origin is the public host the
// activation links point at.
func NewMailTemplates(origin string) *MailTemplates {
	raw, err := templatesFS.ReadFile(verificationTemplateFile)
	if err != nil {
		// Embedded file, missing only on a broken build.
		panic("auth: missing embedded mail template: " + err.Error())
	}

	return &MailTemplates{
		origin:       origin,
		verification: pongo2.Must(pongo2.FromBytes(raw)),
	}
}

// VerificationMail renders the account activation mail for the given
// recipient name and activation token.
func (t *MailTemplates) VerificationMail(name, token string) (string, error) {
	body, err := t.verification.Execute(pongo2.Context{
		"origin": t.origin,
		"name":   name,
		"token":  token,
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render verification mail")
	}
	return body, nil
}
