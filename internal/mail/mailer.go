// Package mail is the notification dispatch boundary. The sweep is its
// only caller.
package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"financas/internal/core"
)

// Mailer dispatches one message and reports success or failure for that
// single call.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, html string) error
}

// ResendMailer delivers through the Resend API.
type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) Send(ctx context.Context, from, to, subject, html string) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// ReminderSubject builds the due-date reminder subject line.
func ReminderSubject(listName string) string {
	return fmt.Sprintf("Lembrete: lista %q vence em breve", listName)
}

// ReminderBody builds the due-date reminder HTML body.
func ReminderBody(listName string, dueDate core.Date) string {
	return fmt.Sprintf(
		"<h2>Olá!</h2>"+
			"<p>A lista <strong>%s</strong> vence em: %s.</p>"+
			"<p>Não se esqueça de conferir!</p>",
		listName, core.FormatCalendarDay(dueDate))
}
