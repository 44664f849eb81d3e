package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/fkhayef/medtrack/internal/config"
)

// Alert kinds the mailer styles differently
const (
	AlertExpired      = "EXPIRED"
	AlertExpiringSoon = "EXPIRING_SOON"
)

// Mailer sends expiry alert emails over SMTP
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a mailer from the SMTP configuration
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// SendExpiryAlert emails the user about a medicine that is expired or
// expiring soon, styled per alert kind
func (m *Mailer) SendExpiryAlert(to, medicineName, expiryDate, alertType string) error {
	subject, body := renderExpiryAlert(medicineName, expiryDate, alertType)
	if subject == "" {
		return fmt.Errorf("unknown alert type %q", alertType)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send expiry alert email: %w", err)
	}
	return nil
}

// renderExpiryAlert builds the subject and HTML body for an alert email.
// Name and date are escaped before interpolation into the markup.
func renderExpiryAlert(medicineName, expiryDate, alertType string) (subject, body string) {
	name := html.EscapeString(medicineName)
	date := html.EscapeString(expiryDate)

	switch alertType {
	case AlertExpired:
		subject = "Medicine EXPIRED: " + medicineName
		body = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 500px; margin: 0 auto;">
	<h2 style="color: #c0392b;">Medicine Expired</h2>
	<p style="color: #333;">The following medicine has <strong style="color: #c0392b;">expired</strong> and should be disposed of safely:</p>
	<ul style="background: #fadbd8; padding: 15px; border-left: 4px solid #c0392b;">
		<li><strong>Medicine:</strong> %s</li>
		<li><strong>Expiry date:</strong> %s</li>
	</ul>
	<p style="color: #666;">Please dispose of it according to local guidelines and replace if needed.</p>
</div>`, name, date)
	case AlertExpiringSoon:
		subject = "Medicine Expiring Soon: " + medicineName
		body = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 500px; margin: 0 auto;">
	<h2 style="color: #d68910;">Medicine Expiring Soon</h2>
	<p style="color: #333;">The following medicine is <strong style="color: #d68910;">expiring soon</strong>. Please check and replace if needed:</p>
	<ul style="background: #fdebd0; padding: 15px; border-left: 4px solid #d68910;">
		<li><strong>Medicine:</strong> %s</li>
		<li><strong>Expiry date:</strong> %s</li>
	</ul>
	<p style="color: #666;">Consider using or replacing this medicine before it expires.</p>
</div>`, name, date)
	}

	return subject, body
}
