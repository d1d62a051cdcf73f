package mailer

import (
	"log"
	"os"
	"strconv"

	"savoro_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// Mailer envoie les e-mails transactionnels. Tous les envois sont
// best-effort : les appelants loguent l'échec et n'échouent jamais
// l'opération principale.
type Mailer interface {
	SendOrderConfirmation(order models.Order, to string) error
	SendOrderStatus(order models.Order, to string, newStatus string) error
	SendPasswordReset(to string, token string) error
}

// SMTPMailer envoie via le relai SMTP configuré en environnement.
type SMTPMailer struct {
	host string
	port int
	from string
}

func NewSMTPMailer() *SMTPMailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@savoro.app"
	}
	return &SMTPMailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		from: from,
	}
}

func (m *SMTPMailer) SendOrderConfirmation(order models.Order, to string) error {
	return m.send(to, "🍕 Confirmation de votre commande Savoro", orderConfirmationHTML(order))
}

func (m *SMTPMailer) SendOrderStatus(order models.Order, to string, newStatus string) error {
	return m.send(to, statusEmailSubject(newStatus), statusEmailHTML(order, newStatus))
}

func (m *SMTPMailer) SendPasswordReset(to string, token string) error {
	return m.send(to, "🔑 Réinitialisation de votre mot de passe Savoro", passwordResetHTML(token))
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}
