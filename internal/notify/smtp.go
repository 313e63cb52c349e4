package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// ======================================================
// SMTP MAILER
// ======================================================

type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(host, port, from string) *SMTPMailer {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@salonkit.local"
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to string, msg Message) error {
	body := buildMessage(m.from, to, msg)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(body))
}

// multipart com texto + anexo ICS quando presente
func buildMessage(from, to string, msg Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n", from, to, msg.Subject)

	if len(msg.ICS) == 0 {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Text)
		b.WriteString("\r\n")
		return b.String()
	}

	const boundary = "salonkit-boundary"
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.Text)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/calendar; method=REQUEST\r\nContent-Transfer-Encoding: base64\r\nContent-Disposition: attachment; filename=appointment.ics\r\n\r\n", boundary)
	b.WriteString(base64.StdEncoding.EncodeToString(msg.ICS))
	fmt.Fprintf(&b, "\r\n--%s--\r\n", boundary)

	return b.String()
}

var _ Mailer = (*SMTPMailer)(nil)

// ======================================================
// LOG-ONLY TRANSPORTS
// ======================================================
// Transportes reais de SMS/WhatsApp são plugados na integração; estes
// registram e aceitam, para ambientes sem provedor configurado.

type LogSMSClient struct{}

func (LogSMSClient) Send(_ context.Context, phone string, text string) error {
	log.Printf("sms to %s: %s", phone, text)
	return nil
}

type LogWhatsAppClient struct{}

func (LogWhatsAppClient) SendTemplate(_ context.Context, phone, template string, params []string) error {
	log.Printf("whatsapp template %s to %s: %v", template, phone, params)
	return nil
}

func (LogWhatsAppClient) SendText(_ context.Context, phone, text string) error {
	log.Printf("whatsapp text to %s: %s", phone, text)
	return nil
}

var (
	_ SMSClient      = (*LogSMSClient)(nil)
	_ WhatsAppClient = (*LogWhatsAppClient)(nil)
)
