package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
)

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailNotifier mails staff messages through Resend.
type EmailNotifier struct {
	emails emailSender
	from   string
	to     []string
}

func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	client := resend.NewClient(apiKey)
	return &EmailNotifier{
		emails: client.Emails,
		from:   from,
		to:     []string{to},
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, message string) error {
	subject, _, _ := strings.Cut(message, "\n")

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: subject,
		Text:    message,
		Html: fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;"><pre style="white-space: pre-wrap;">%s</pre></div>`,
			html.EscapeString(message)),
	}

	if _, err := n.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
