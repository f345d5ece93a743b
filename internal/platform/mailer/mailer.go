package mailer

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/eaas-dev/eaas-backend/internal/logger"
)

// Client delivers transactional mail. The zero-config deployment gets the
// log-only client so sign-up flows keep working without a provider key.
type Client interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendRequest struct {
	From    EmailAddress
	To      []EmailAddress
	Subject string
	Text    string
	HTML    string
}

type SendResult struct {
	StatusCode int
	MessageID  string
}

// NewFromEnv returns the SendGrid client when SENDGRID_API_KEY is set and the
// log-only client otherwise.
func NewFromEnv(log *logger.Logger) (Client, error) {
	if strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")) == "" {
		log.Warn("SENDGRID_API_KEY not set, outbound mail will be logged instead of sent")
		return NewLogClient(log), nil
	}
	return NewSendGrid(log, ConfigFromEnv())
}

type logClient struct {
	log *logger.Logger
}

func NewLogClient(log *logger.Logger) Client {
	return &logClient{log: log.With("client", "LogMailer")}
}

func (c *logClient) Send(_ context.Context, req SendRequest) (*SendResult, error) {
	if len(req.To) == 0 {
		return nil, fmt.Errorf("mailer: To required")
	}
	c.log.Info("Email send skipped (log-only mailer)",
		"email", req.To[0].Email,
		"subject", req.Subject,
	)
	return &SendResult{StatusCode: 202, MessageID: "logged"}, nil
}

// VerificationEmail builds the account-verification message for a sign-up.
func VerificationEmail(to, verifyURL string) SendRequest {
	safeURL := html.EscapeString(verifyURL)
	body := fmt.Sprintf(`<div style="font-family:sans-serif;max-width:540px;margin:0 auto">
<h2>Verify your email</h2>
<p>Thanks for signing up for the evaluation platform. Confirm your address to activate your account.</p>
<p><a href="%s" style="display:inline-block;padding:10px 18px;background:#2563eb;color:#fff;border-radius:6px;text-decoration:none">Verify email</a></p>
<p>If the button does not work, open this link:<br>%s</p>
<p>If you did not create this account, you can ignore this message.</p>
</div>`, safeURL, safeURL)

	return SendRequest{
		To:      []EmailAddress{{Email: to}},
		Subject: "Verify your email address",
		Text:    "Confirm your account: " + verifyURL,
		HTML:    body,
	}
}
