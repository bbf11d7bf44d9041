package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

var orderTemplate = template.Must(template.New("order").Parse(`<html><body>
<h2>Thank you for your order #{{.Order.ID}}</h2>
<table>
{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td>x{{.Quantity}}</td><td>{{.UnitPrice.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Order.Subtotal.StringFixed 2}}</p>
{{if .Order.Discount.IsPositive}}<p>Discount: -{{.Order.Discount.StringFixed 2}}</p>
{{end}}<p><b>Total: {{.Order.Total.StringFixed 2}}</b></p>
<p>Payment: {{.Order.PaymentMethod}}</p>
<p>Deliver to: {{.Order.Shipping.AddressLine}}, {{.Order.Shipping.City}} ({{.Order.Shipping.Phone}})</p>
</body></html>`))

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends order confirmations through an SMTP relay.
type SMTPMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   sendFunc
	logger *slog.Logger
}

// NewSMTPMailer validates the relay address. Credentials are optional.
func NewSMTPMailer(addr, from, user, password string, logger *slog.Logger) (*SMTPMailer, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parse smtp address: %w", err)
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("smtp sender address must be provided")
	}
	m := &SMTPMailer{addr: addr, from: from, send: smtp.SendMail, logger: logger}
	if user != "" {
		m.auth = smtp.PlainAuth("", user, password, host)
	}
	return m, nil
}

// SendOrderConfirmation renders and sends the confirmation for order.
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, user model.User, order model.Order) error {
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("user %d has no email address", user.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := orderTemplate.Execute(&body, struct{ Order model.Order }{order}); err != nil {
		return fmt.Errorf("render order confirmation: %w", err)
	}

	msg := buildMessage(m.from, user.Email, fmt.Sprintf("Order #%d confirmation", order.ID), body.Bytes())
	if err := m.send(m.addr, m.auth, m.from, []string{user.Email}, msg); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	m.logger.Info("order confirmation sent", slog.Int64("order_id", order.ID), slog.Int64("user_id", user.ID))
	return nil
}

func buildMessage(from, to, subject string, html []byte) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.Write(html)
	return b.Bytes()
}
