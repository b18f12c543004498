// Package notification delivers one-time codes to principals out-of-band.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"backoffice/config"
	"backoffice/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

// mailSender implements service.CodeSender over SMTP.
type mailSender struct {
	cfg    *config.SMTPConfig
	logger *slog.Logger
}

// NewMailSender is the constructor for mailSender.
func NewMailSender(cfg *config.Config, logger *slog.Logger) (service.CodeSender, error) {
	if cfg.SMTP == nil {
		return nil, errors.New("smtp configuration is missing")
	}

	return &mailSender{cfg: cfg.SMTP, logger: logger}, nil
}

// SendCode delivers the one-time code by email. The code itself is never
// logged; only the recipient identity and the outcome are.
func (s *mailSender) SendCode(ctx context.Context, email, displayName, code string) error {
	msg := mail.NewMsg()
	if err := msg.To(email); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}
	if err := msg.From(s.cfg.From); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}

	msg.Subject("您的登入驗證碼")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"%s 您好：\n\n您的登入驗證碼為 %s，5 分鐘內有效。\n\n若這不是您本人的操作，請忽略此信件。\n",
		displayName, code,
	))

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.Username == "" {
		// Local development relay without authentication.
		opts = []mail.Option{mail.WithPort(s.cfg.Port), mail.WithTLSPolicy(mail.NoTLS)}
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("failed to send one-time code", slog.String("email", email), slog.Any("error", err))

		return errors.Wrap(err, "failed to send one-time code")
	}

	return nil
}
