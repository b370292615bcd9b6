package email

import (
	"fmt"
	"strings"

	"github.com/SHUBHAMREWA/kanvei.in/internal/config"
	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog"
)

// Mailer sends transactional email. All sends are best-effort: callers log
// failures and never propagate them.
type Mailer interface {
	// SendOrderConfirmation emails the customer after an order is recorded.
	SendOrderConfirmation(order *model.Order, toEmail string) error

	// SendSupportRequest forwards a contact-form submission to the support
	// inbox and auto-replies to the customer.
	SendSupportRequest(name, fromEmail, subject, message, category string) error
}

// postmarkMailer implements Mailer using Postmark.
type postmarkMailer struct {
	client       *postmark.Client
	sender       string
	supportInbox string
	logger       zerolog.Logger
}

// NewPostmarkMailer creates a Postmark-backed mailer.
func NewPostmarkMailer(cfg config.EmailConfig, logger zerolog.Logger) Mailer {
	return &postmarkMailer{
		client:       postmark.NewClient(cfg.ServerToken, ""),
		sender:       cfg.Sender,
		supportInbox: cfg.SupportInbox,
		logger:       logger.With().Str("component", "mailer").Logger(),
	}
}

// SendOrderConfirmation emails the customer after an order is recorded.
func (m *postmarkMailer) SendOrderConfirmation(order *model.Order, toEmail string) error {
	subject := "Order Confirmation"
	htmlBody := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>"+
			"Total Amount: <strong>₹%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.ID.String(),
		order.TotalAmount,
		order.PaymentMethod,
	)

	if err := m.send(toEmail, subject, htmlBody); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	m.logger.Info().
		Str("order_id", order.ID.String()).
		Str("to", toEmail).
		Msg("order confirmation email sent")

	return nil
}

// SendSupportRequest forwards a contact-form submission to the support inbox
// and auto-replies to the customer.
func (m *postmarkMailer) SendSupportRequest(name, fromEmail, subject, message, category string) error {
	supportBody := fmt.Sprintf(
		"<h2>New Support Request</h2>"+
			"<p><strong>Category:</strong> %s</p>"+
			"<p><strong>Name:</strong> %s</p>"+
			"<p><strong>Email:</strong> %s</p>"+
			"<p><strong>Subject:</strong> %s</p>"+
			"<p><strong>Message:</strong></p><div>%s</div>",
		category, name, fromEmail, subject, strings.ReplaceAll(message, "\n", "<br>"),
	)

	if err := m.send(m.supportInbox, "Support: "+subject, supportBody); err != nil {
		return fmt.Errorf("failed to forward support request: %w", err)
	}

	replyBody := fmt.Sprintf(
		"<h2>Thank you for contacting Kanvei Support!</h2>"+
			"<p>Dear %s,</p>"+
			"<p>We have received your support request and our team will get back to you within 24 hours.</p>"+
			"<p><strong>Subject:</strong> %s</p>",
		name, subject,
	)

	if err := m.send(fromEmail, "We received your request", replyBody); err != nil {
		// The support team already has the request; the missing auto-reply
		// is only logged.
		m.logger.Warn().Err(err).Str("to", fromEmail).Msg("failed to send support auto-reply")
	}

	return nil
}

func (m *postmarkMailer) send(to, subject, htmlBody string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.sender,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: htmlBody,
	})
	return err
}

// nopMailer is used when email is disabled by configuration.
type nopMailer struct {
	logger zerolog.Logger
}

// NewNopMailer creates a mailer that logs instead of sending.
func NewNopMailer(logger zerolog.Logger) Mailer {
	return &nopMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

func (m *nopMailer) SendOrderConfirmation(order *model.Order, toEmail string) error {
	m.logger.Debug().Str("order_id", order.ID.String()).Str("to", toEmail).Msg("email disabled, skipping order confirmation")
	return nil
}

func (m *nopMailer) SendSupportRequest(name, fromEmail, subject, message, category string) error {
	m.logger.Debug().Str("from", fromEmail).Msg("email disabled, skipping support request")
	return nil
}
