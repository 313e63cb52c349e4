package notify

import (
	"context"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// ======================================================
// COLLABORATOR CONTRACTS
// ======================================================
// Renderização de template/ICS e os transportes são colaboradores
// externos; o dispatcher só orquestra.

type Message struct {
	Subject string
	Text    string
	HTML    string
	ICS     []byte // anexo de calendário, opcional
}

type TemplateRenderer interface {
	RenderConfirmation(
		ap *models.Appointment,
		customer *models.Customer,
		location *models.Location,
		manageURL string,
	) (Message, error)

	RenderVIPGrant(
		customer *models.Customer,
		location *models.Location,
		staffNames []string,
	) (Message, error)

	// RenderWhatsAppTemplate devolve o nome do template aprovado e a
	// lista posicional de placeholders.
	RenderWhatsAppTemplate(
		ap *models.Appointment,
		customer *models.Customer,
		location *models.Location,
	) (template string, params []string)

	// RenderWhatsAppFallback é o texto livre usado quando o envio
	// templated falha.
	RenderWhatsAppFallback(
		ap *models.Appointment,
		customer *models.Customer,
		location *models.Location,
	) string

	RenderSMS(
		ap *models.Appointment,
		location *models.Location,
		smsURL string,
	) string
}

type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}

type SMSClient interface {
	Send(ctx context.Context, phone string, text string) error
}

type WhatsAppClient interface {
	SendTemplate(ctx context.Context, phone string, template string, params []string) error
	SendText(ctx context.Context, phone string, text string) error
}
