package mail_fx

import (
	"go.uber.org/fx"

	"flyttman/internal/config"
	"flyttman/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config) (services.IMailService, error) {
	return services.NewSMTPMailService(services.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port, // 587 for STARTTLS; use 465 with UseSSL=true for SMTPS
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		FromName:   cfg.SMTP.FromName,
		UseSSL:     cfg.SMTP.UseSSL,
		RequireTLS: cfg.IsProduction(),

		AppName:       cfg.SMTP.FromName,
		AppBaseURL:    cfg.SMTP.AppBaseURL,
		DefaultLocale: cfg.SMTP.DefaultLocale,
	})
}
