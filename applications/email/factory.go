package email

import (
	"context"
	"fmt"

	"github.com/prem22k/c3-backend/config"
)

// NewSender picks the transport named by EMAIL_TRANSPORT.
func NewSender(ctx context.Context, cfg config.Config) (Sender, error) {
	switch cfg.EmailTransport {
	case config.TransportSMTP:
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFallbackPorts, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom), nil
	case config.TransportGmail:
		return NewGmailSender(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken, cfg.EmailFrom)
	case config.TransportResend:
		return NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom), nil
	case config.TransportLog, "":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email transport: %s", cfg.EmailTransport)
	}
}
