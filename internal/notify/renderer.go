package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/timezone"
)

// ======================================================
// PLAIN RENDERER
// ======================================================
// Renderer default em texto puro. Templates HTML de marca ficam no
// serviço de templates; este cobre instalações sem ele.

type PlainRenderer struct{}

func NewPlainRenderer() *PlainRenderer { return &PlainRenderer{} }

func (PlainRenderer) RenderConfirmation(
	ap *models.Appointment,
	customer *models.Customer,
	location *models.Location,
	manageURL string,
) (Message, error) {

	loc := timezone.Location(location.Timezone)
	when := ap.StartTime.In(loc).Format("02/01/2006 15:04")

	text := fmt.Sprintf(
		"Olá %s,\n\nSeu agendamento em %s está confirmado para %s.\nCódigo: %s\n\nGerencie em: %s\n",
		customer.Name, location.Name, when, ap.ConfirmationCode, manageURL,
	)

	return Message{
		Subject: fmt.Sprintf("Agendamento confirmado - %s", location.Name),
		Text:    text,
		ICS:     renderICS(ap, location),
	}, nil
}

func (PlainRenderer) RenderVIPGrant(
	customer *models.Customer,
	location *models.Location,
	staffNames []string,
) (Message, error) {

	text := fmt.Sprintf(
		"Olá %s,\n\nVocê agora pode agendar online com: %s em %s.\n",
		customer.Name, strings.Join(staffNames, ", "), location.Name,
	)

	return Message{
		Subject: fmt.Sprintf("Acesso liberado - %s", location.Name),
		Text:    text,
	}, nil
}

func (PlainRenderer) RenderWhatsAppTemplate(
	ap *models.Appointment,
	customer *models.Customer,
	location *models.Location,
) (string, []string) {

	loc := timezone.Location(location.Timezone)

	return "appointment_confirmation", []string{
		customer.Name,
		location.Name,
		ap.StartTime.In(loc).Format("02/01/2006"),
		ap.StartTime.In(loc).Format("15:04"),
		ap.ConfirmationCode,
	}
}

func (PlainRenderer) RenderWhatsAppFallback(
	ap *models.Appointment,
	customer *models.Customer,
	location *models.Location,
) string {

	loc := timezone.Location(location.Timezone)

	return fmt.Sprintf(
		"%s, seu agendamento em %s está confirmado para %s às %s. Código: %s",
		customer.Name,
		location.Name,
		ap.StartTime.In(loc).Format("02/01/2006"),
		ap.StartTime.In(loc).Format("15:04"),
		ap.ConfirmationCode,
	)
}

func (PlainRenderer) RenderSMS(
	ap *models.Appointment,
	location *models.Location,
	smsURL string,
) string {

	loc := timezone.Location(location.Timezone)

	return fmt.Sprintf(
		"%s: confirmado %s %s. %s",
		location.Name,
		ap.StartTime.In(loc).Format("02/01"),
		ap.StartTime.In(loc).Format("15:04"),
		smsURL,
	)
}

func renderICS(ap *models.Appointment, location *models.Location) []byte {
	var b strings.Builder

	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//salonkit//salon-scheduler//PT\r\nMETHOD:REQUEST\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:%s@salonkit\r\n", ap.ConfirmationCode)
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", time.Now().UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "DTSTART:%s\r\n", ap.StartTime.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "DTEND:%s\r\n", ap.EndTime.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", location.Name)
	fmt.Fprintf(&b, "LOCATION:%s\r\n", location.Address)
	b.WriteString("END:VEVENT\r\nEND:VCALENDAR\r\n")

	return []byte(b.String())
}

var _ TemplateRenderer = (*PlainRenderer)(nil)
