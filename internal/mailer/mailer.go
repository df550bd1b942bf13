package mailer

import (
	"fmt"
	"net"
	"net/smtp"
	"time"

	"storefront-backend/internal/model"
)

// Sender delivers a single rendered message.
type Sender interface {
	Send(to, subject, html string) error
}

// SMTPSender sends mail over plain SMTP with a bounded dial.
type SMTPSender struct {
	host    string
	port    string
	from    string
	timeout time.Duration
}

func NewSMTPSender(host, port, from string, timeout time.Duration) *SMTPSender {
	return &SMTPSender{
		host:    host,
		port:    port,
		from:    from,
		timeout: timeout,
	}
}

func (s *SMTPSender) Send(to, subject, html string) error {
	addr := net.JoinHostPort(s.host, s.port)

	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.Mail(s.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, html)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

// Mailer renders lifecycle emails and hands them to the sender.
type Mailer struct {
	sender     Sender
	adminEmail string
}

func New(sender Sender, adminEmail string) *Mailer {
	return &Mailer{
		sender:     sender,
		adminEmail: adminEmail,
	}
}

// SendOrderEvent sends the customer-facing email for a lifecycle event.
func (m *Mailer) SendOrderEvent(kind EventKind, order *model.Order, items []model.OrderItem) error {
	subject, body, err := buildBody(kind, order, items)
	if err != nil {
		return err
	}
	return m.sender.Send(order.CustomerEmail, subject, body)
}

// SendAdminNewOrder alerts the shop inbox that a new order needs processing.
func (m *Mailer) SendAdminNewOrder(order *model.Order, items []model.OrderItem) error {
	if m.adminEmail == "" {
		return nil
	}
	subject, body, err := buildBody(eventAdminNewOrder, order, items)
	if err != nil {
		return err
	}
	return m.sender.Send(m.adminEmail, subject, body)
}
