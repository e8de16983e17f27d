// Package mailer implements the mail collaborator (spec.md §4.4, §6) on
// top of resend-go, the teacher's transactional-email dependency.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/modules/digest/ports"
)

// ResendMailer sends digest artifacts via the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a new Resend-backed mailer.
func NewResendMailer(cfg config.EmailConfig) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
	}
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<html><body>
<p>Hi {{.Name}},</p>
{{range .Days}}
<h3>{{.DayLabel}}</h3>
<ul>
{{range .Articles}}
<li><a href="{{.ReadLink}}">{{.Title}}</a> — {{.Explanation}} ({{range .Authors}}{{.}} {{end}})
  <a href="{{.SaveLink}}">save</a></li>
{{end}}
</ul>
{{end}}
<p><a href="{{.Link}}">Manage your subscription</a></p>
</body></html>
`))

// Send renders artifact and sends it through Resend.
func (m *ResendMailer) Send(ctx context.Context, artifact ports.MailArtifact) error {
	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, artifact); err != nil {
		return fmt.Errorf("render digest template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{artifact.ToAddress},
		Subject: artifact.Subject,
		Html:    body.String(),
	}

	_, err := m.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("send digest mail: %w", err)
	}

	return nil
}
