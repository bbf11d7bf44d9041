package mail

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/config"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

// Module provides the order mailer when an SMTP relay is configured.
var Module = fx.Provide(newMailer)

type mailerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newMailer(p mailerParams) (usecase.OrderMailer, error) {
	if p.Config.SMTPAddr == "" {
		p.Logger.Info("smtp relay not configured, order confirmations disabled")
		return nil, nil
	}
	mailer, err := NewSMTPMailer(p.Config.SMTPAddr, p.Config.SMTPFrom, p.Config.SMTPUser, p.Config.SMTPPassword, p.Logger)
	if err != nil {
		return nil, err
	}
	return mailer, nil
}
