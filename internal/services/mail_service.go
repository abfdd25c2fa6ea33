// services/mail_service.go
package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"

	dbm "flyttman/internal/models/db_models"
)

type IMailService interface {
	SendTipReceived(ctx context.Context, to, locale string, data dbm.TipReceivedPayload) error
}

// SMTPConfig holds SMTP + branding config.
type SMTPConfig struct {
	Host       string // e.g. "smtp.gmail.com"
	Port       int    // 587 (STARTTLS) or 465 (SMTPS)
	Username   string
	Password   string
	From       string // envelope from
	FromName   string // display name
	UseSSL     bool   // true for SMTPS 465, false for STARTTLS 587
	RequireTLS bool   // fail if STARTTLS is not offered

	AppName       string
	AppBaseURL    string
	DefaultLocale string
}

type smtpMailService struct {
	cfg SMTPConfig
	now func() time.Time
}

var (
	tipHTMLTpl = template.Must(template.New("tipHTML").Parse(tipHTMLTemplate))
	tipTextTpl = texttemplate.Must(texttemplate.New("tipText").Parse(tipTextTemplate))
)

func NewSMTPMailService(cfg SMTPConfig) (IMailService, error) {
	if cfg.AppName == "" {
		cfg.AppName = "Flyttman"
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "sv"
	}
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	return &smtpMailService{cfg: cfg, now: time.Now}, nil
}

// ------------------- Public API -------------------

func (s *smtpMailService) SendTipReceived(ctx context.Context, to, locale string, data dbm.TipReceivedPayload) error {
	msg, err := RenderTipReceived(s.cfg, locale, data, s.now())
	if err != nil {
		return err
	}
	return s.send(ctx, to, msg)
}

// ------------------- Rendering -------------------

type tipTexts struct {
	Subject     string
	Greeting    string
	Intro       string
	AmountLabel string
	MessageHead string
	DateLabel   string
	Footer      string
}

var tipTextsByLocale = map[string]tipTexts{
	"sv": {
		Subject:     "Du har fått dricks!",
		Greeting:    "Hej %s,",
		Intro:       "%s har skickat dricks till dig för flytten.",
		AmountLabel: "Belopp",
		MessageHead: "Meddelande från kunden",
		DateLabel:   "Datum",
		Footer:      "Alla rättigheter förbehållna.",
	},
	"en": {
		Subject:     "You received a tip!",
		Greeting:    "Hi %s,",
		Intro:       "%s sent you a tip for the move.",
		AmountLabel: "Amount",
		MessageHead: "Message from the customer",
		DateLabel:   "Date",
		Footer:      "All rights reserved.",
	},
}

type TipEmailData struct {
	Lang        string
	Subject     string
	Greeting    string
	Intro       string
	AmountLabel string
	Amount      string
	Currency    string
	MessageHead string
	Message     string
	DateLabel   string
	PaidAt      string
	AppName     string
	AppBaseURL  string
	Footer      string
	Year        int
}

// RenderedMail is a tip email ready to be put on the wire.
type RenderedMail struct {
	Subject string
	HTML    string
	Text    string
}

// RenderTipReceived localizes and renders the tip email. Unknown locales fall
// back to the configured default, then Swedish.
func RenderTipReceived(cfg SMTPConfig, locale string, p dbm.TipReceivedPayload, now time.Time) (*RenderedMail, error) {
	lang := resolveLocale(locale, cfg.DefaultLocale)
	texts := tipTextsByLocale[lang]

	sender := strings.TrimSpace(p.SenderName)
	if sender == "" {
		if lang == "sv" {
			sender = "En kund"
		} else {
			sender = "A customer"
		}
	}
	currency := p.Currency
	if currency == "" {
		currency = "SEK"
	}

	data := TipEmailData{
		Lang:        lang,
		Subject:     texts.Subject,
		Greeting:    fmt.Sprintf(texts.Greeting, p.DriverName),
		Intro:       fmt.Sprintf(texts.Intro, sender),
		AmountLabel: texts.AmountLabel,
		Amount:      p.Amount,
		Currency:    currency,
		MessageHead: texts.MessageHead,
		Message:     strings.TrimSpace(p.Message),
		DateLabel:   texts.DateLabel,
		PaidAt:      p.PaidAt,
		AppName:     cfg.AppName,
		AppBaseURL:  cfg.AppBaseURL,
		Footer:      texts.Footer,
		Year:        now.Year(),
	}

	var hb, tb bytes.Buffer
	if err := tipHTMLTpl.Execute(&hb, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := tipTextTpl.Execute(&tb, data); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	return &RenderedMail{Subject: texts.Subject, HTML: hb.String(), Text: tb.String()}, nil
}

func resolveLocale(locale, fallback string) string {
	for _, l := range []string{locale, fallback} {
		l = strings.ToLower(strings.TrimSpace(l))
		if i := strings.IndexAny(l, "-_"); i > 0 {
			l = l[:i]
		}
		if _, ok := tipTextsByLocale[l]; ok {
			return l
		}
	}
	return "sv"
}

const tipHTMLTemplate = `<!doctype html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Subject}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f8fafc; color: #0f172a; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .wrapper { width: 100%; padding: 40px 16px; box-sizing: border-box; }
    .container { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 16px; overflow: hidden; box-shadow: 0 20px 60px rgba(0, 0, 0, 0.08); }
    .header { padding: 32px 32px 24px; border-bottom: 1px solid rgba(0, 0, 0, 0.06); }
    .brand { font-weight: 700; font-size: 22px; color: #1e40af; text-transform: uppercase; }
    .hero { padding: 40px 32px; }
    h1 { margin: 0 0 16px; font-size: 28px; line-height: 1.3; }
    p { margin: 0 0 20px; line-height: 1.7; color: #475569; font-size: 16px; }
    .amount { font-size: 32px; font-weight: 700; color: #16a34a; margin: 24px 0; }
    .message { background: rgba(0, 0, 0, 0.02); border: 1px solid rgba(0, 0, 0, 0.08); border-radius: 8px; padding: 16px; font-style: italic; }
    .footer { padding: 24px 32px; color: #64748b; font-size: 13px; text-align: center; background: #f8fafc; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="container">
      <div class="header">
        <div class="brand">{{.AppName}}</div>
      </div>
      <div class="hero">
        <h1>{{.Subject}}</h1>
        <p>{{.Greeting}}</p>
        <p>{{.Intro}}</p>
        <div class="amount">{{.AmountLabel}}: {{.Amount}} {{.Currency}}</div>
        {{if .PaidAt}}<p>{{.DateLabel}}: {{.PaidAt}}</p>{{end}}
        {{if .Message}}
          <p><strong>{{.MessageHead}}</strong></p>
          <div class="message">{{.Message}}</div>
        {{end}}
      </div>
      <div class="footer">
        © {{.Year}} {{.AppName}}. {{.Footer}}{{if .AppBaseURL}}<br><a href="{{.AppBaseURL}}">{{.AppBaseURL}}</a>{{end}}
      </div>
    </div>
  </div>
</body>
</html>`

const tipTextTemplate = `{{.Subject}}

{{.Greeting}}

{{.Intro}}

{{.AmountLabel}}: {{.Amount}} {{.Currency}}
{{if .PaidAt}}{{.DateLabel}}: {{.PaidAt}}
{{end}}{{if .Message}}
{{.MessageHead}}:
"{{.Message}}"
{{end}}
{{.AppName}} (c) {{.Year}}
`

// ------------------- SMTP Send -------------------

// parseRecipient accepts a single bare or named address and nothing that could
// spill into other headers.
func parseRecipient(to string) (*mail.Address, error) {
	if strings.ContainsAny(to, "\r\n") {
		return nil, fmt.Errorf("invalid recipient %q: contains line break", to)
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	return addr, nil
}

func (s *smtpMailService) buildMessage(to *mail.Address, m *RenderedMail) ([]byte, error) {
	boundary := fmt.Sprintf("alt_%d", s.now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to.String())
	write("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	write("Date: %s\r\n", s.now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	write("\r\n")

	for _, part := range []struct{ contentType, body string }{
		{"text/plain", m.Text},
		{"text/html", m.HTML},
	} {
		write("--%s\r\n", boundary)
		write("Content-Type: %s; charset=UTF-8\r\n", part.contentType)
		write("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&msg)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		write("\r\n")
	}
	write("--%s--\r\n", boundary)
	return msg.Bytes(), nil
}

func (s *smtpMailService) send(ctx context.Context, to string, m *RenderedMail) error {
	rcpt, err := parseRecipient(to)
	if err != nil {
		return err
	}
	body, err := s.buildMessage(rcpt, m)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	if s.cfg.UseSSL {
		// SMTPS (implicit TLS, usually port 465)
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(rcpt.Address); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(body); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	from := mail.Address{Name: strings.TrimSpace(s.cfg.FromName), Address: s.cfg.From}
	return from.String()
}
