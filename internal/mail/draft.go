// Package mail composes the message that accompanies an issued invoice and
// delivers it through SES when configured.
package mail

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/felixhoffmnn/latex-templates/internal/assemble"
	"github.com/felixhoffmnn/latex-templates/internal/config"
)

// Draft is a composed message with one PDF attachment.
type Draft struct {
	From       string
	To         string
	BCC        string
	Subject    string
	HTMLBody   string
	TextBody   string
	Attachment string
}

var (
	bodyPolicyOnce sync.Once
	bodyPolicy     *bluemonday.Policy
)

func bodySanitizer() *bluemonday.Policy {
	bodyPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "br", "strong", "em")
		bodyPolicy = policy
	})
	return bodyPolicy
}

// Compose builds the message for an assembled invoice.
func Compose(cfg *config.Config, doc *assemble.Document, attachment string) Draft {
	number := doc.Invoice.Number
	date := doc.Context.Invoice.Date
	due := doc.Context.Invoice.DueDate
	customer := doc.Customer.Name()
	sender := cfg.Sender.Address.Name

	bcc := cfg.Mail.BCC
	if bcc == "" {
		bcc = cfg.Sender.Email
	}

	raw := fmt.Sprintf(
		"<p>Hallo %s,</p>"+
			"<p>anbei findest du die Rechnung <strong>%s</strong> vom <strong>%s</strong>.<br>"+
			"Bitte überweise den Betrag bis zum <strong>%s</strong> auf das angegebene Konto (siehe Rechnung).</p>"+
			"<p>Bei Fragen kannst du dich gerne jederzeit melden.</p>"+
			"<p>Viele Grüße<br>%s</p>",
		html.EscapeString(customer), html.EscapeString(number), date, due, html.EscapeString(sender))

	text := fmt.Sprintf(
		"Hallo %s,\n\nanbei findest du die Rechnung %s vom %s.\n"+
			"Bitte überweise den Betrag bis zum %s auf das angegebene Konto (siehe Rechnung).\n\n"+
			"Bei Fragen kannst du dich gerne jederzeit melden.\n\nViele Grüße\n%s\n",
		customer, number, date, due, sender)

	if abs, err := filepath.Abs(attachment); err == nil {
		attachment = abs
	}

	return Draft{
		From:       cfg.Sender.Email,
		To:         doc.Customer.Email,
		BCC:        bcc,
		Subject:    assemble.Purpose(number, doc.Invoice.Date),
		HTMLBody:   bodySanitizer().Sanitize(raw),
		TextBody:   text,
		Attachment: attachment,
	}
}

// ComposeArg renders the draft as a Thunderbird -compose argument.
func ComposeArg(d Draft) string {
	quote := strings.NewReplacer("'", "’")
	fields := []struct{ key, value string }{
		{"from", d.From},
		{"to", d.To},
		{"bcc", d.BCC},
		{"subject", d.Subject},
		{"body", d.HTMLBody},
		{"attachment", d.Attachment},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s='%s'", f.key, quote.Replace(f.value)))
	}
	return strings.Join(parts, ",")
}
