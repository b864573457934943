package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/pkg/config"
)

var _ notify.EmailGateway = (*SMTPEmailGateway)(nil)

// SMTPEmailGateway envía correos por SMTP plano con auth.
type SMTPEmailGateway struct {
	addr   string
	auth   smtp.Auth
	sender string
}

// NewSMTPEmailGateway construye el gateway.
func NewSMTPEmailGateway(cfg config.SMTPConfig) *SMTPEmailGateway {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPEmailGateway{
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:   auth,
		sender: cfg.Sender,
	}
}

// SendEmail entrega el correo. El contexto no corta un envío en curso: smtp
// del stdlib no lo soporta, el timeout lo pone la conexión del servidor.
func (g *SMTPEmailGateway) SendEmail(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		g.sender, to, subject, body)
	if err := smtp.SendMail(g.addr, g.auth, g.sender, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
