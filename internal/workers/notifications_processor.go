// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/pkg/config"
)

// SendMailFunc matches smtp.SendMail
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationProcessor turns low stock alerts into log entries and, when SMTP is configured, emails
type NotificationProcessor struct {
	config   config.NotificationsConfig
	sendMail SendMailFunc
	logger   *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(cfg config.NotificationsConfig, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		config:   cfg,
		sendMail: smtp.SendMail,
		logger:   logger.With(slog.String("processor", "notification")),
	}
}

// WithSendMail replaces the SMTP transport
func (p *NotificationProcessor) WithSendMail(fn SendMailFunc) *NotificationProcessor {
	p.sendMail = fn
	return p
}

// HandleLowStockAlert processes stock:low_alert tasks
func (p *NotificationProcessor) HandleLowStockAlert(ctx context.Context, t *asynq.Task) error {
	var alert domain.LowStockAlert
	if err := json.Unmarshal(t.Payload(), &alert); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.WarnContext(ctx, "low stock",
		slog.String("code", alert.Code),
		slog.String("name", alert.Name),
		slog.Int("quantity", alert.Quantity),
		slog.Int("minimum_stock", alert.MinimumStock),
		slog.Time("detected_at", alert.DetectedAt))

	if !p.config.EmailEnabled() {
		p.logger.DebugContext(ctx, "email notifications disabled, alert logged only",
			slog.String("code", alert.Code))
		return nil
	}

	subject, body := renderLowStockEmail(alert)
	msg := buildMessage(p.config.From, p.config.Recipients, subject, body)

	var auth smtp.Auth
	if p.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", p.config.SMTPUsername, p.config.SMTPPassword, p.config.SMTPHost)
	}

	addr := net.JoinHostPort(p.config.SMTPHost, p.config.SMTPPort)
	if err := p.sendMail(addr, auth, p.config.From, p.config.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock email sent",
		slog.String("code", alert.Code),
		slog.Int("recipients", len(p.config.Recipients)))
	return nil
}

func renderLowStockEmail(alert domain.LowStockAlert) (string, string) {
	subject := fmt.Sprintf("Low stock: %s (%s)", alert.Name, alert.Code)
	body := fmt.Sprintf(
		"Product %s (%s) is at or below its minimum stock.\r\n\r\nQuantity: %d\r\nMinimum stock: %d\r\nDetected at: %s\r\n",
		alert.Name, alert.Code, alert.Quantity, alert.MinimumStock,
		alert.DetectedAt.Format(domain.TimestampLayout),
	)
	return subject, body
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
