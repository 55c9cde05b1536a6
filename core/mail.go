package core

import (
	"bytes"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	emailTemplates *texttmpl.Template
	tmplInit       sync.Once
)

// ParseEmailTemplates parses all embedded email templates once.
func ParseEmailTemplates(fsys fs.FS, logger Logger) {
	tmplInit.Do(func() {
		tmpls, err := texttmpl.ParseFS(fsys, path.Join("templates", "email", "*.txt"))
		if err != nil {
			logger.Fatal("parsing email templates", errors.Wrap(err, "parsing email templates"))
			return
		}
		emailTemplates = tmpls
	})
}

type (
	// EmailMessage is a renderable email destined to one or more recipients.
	// Either BodyStr (plain, non-templated content) or TemplateName + TemplateContext
	// must be set before sending.
	EmailMessage struct {
		To              []mail.Address
		Cc              []mail.Address
		Bcc             []mail.Address
		Subject         string
		BodyStr         string
		TemplateName    string
		TemplateContext interface{}
	}

	// EmailService sends rendered messages; implementations must not block the caller.
	EmailService interface {
		SendMessages(messages ...*EmailMessage)
	}
)

// Render executes the message's template (if any) into BodyStr.
func (msg *EmailMessage) Render() error {
	if msg.TemplateName == "" {
		return nil
	}
	if emailTemplates == nil {
		return errors.New("email templates not parsed")
	}
	var body bytes.Buffer
	name := msg.TemplateName
	if !strings.HasSuffix(name, ".txt") {
		name += ".txt"
	}
	if err := emailTemplates.ExecuteTemplate(&body, name, msg.TemplateContext); err != nil {
		return errors.Wrapf(err, "executing template %s", name)
	}
	msg.BodyStr = body.String()
	return nil
}

func (msg *EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0 || len(msg.Cc) > 0 || len(msg.Bcc) > 0
}

func (msg *EmailMessage) HasContent() bool {
	return msg.BodyStr != ""
}
