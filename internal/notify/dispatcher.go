package notify

import (
	"context"
	"log"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// ======================================================
// DISPATCHER
// ======================================================
// Fan-out pós-commit, uma chamada por ocorrência. Cada canal é
// independente e best-effort: falha é logada e engolida, nunca volta
// como erro de booking e nunca desfaz a transação já commitada.

type Dispatcher struct {
	renderer TemplateRenderer
	mailer   Mailer // já embrulhado no circuit breaker
	sms      SMSClient
	whatsapp WhatsAppClient
}

func NewDispatcher(
	renderer TemplateRenderer,
	mailer Mailer,
	sms SMSClient,
	whatsapp WhatsAppClient,
) *Dispatcher {
	return &Dispatcher{
		renderer: renderer,
		mailer:   mailer,
		sms:      sms,
		whatsapp: whatsapp,
	}
}

type DispatchInput struct {
	Appointment *models.Appointment
	Customer    *models.Customer
	Location    *models.Location

	EmailRequested bool
	SMSRequested   bool
	WhatsAppOptIn  bool

	ManageURL string
	SMSURL    string
}

func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) {
	if in.Appointment == nil || in.Location == nil {
		return
	}

	d.sendEmail(ctx, in)
	d.sendSMS(ctx, in)
	d.sendWhatsApp(ctx, in)
}

func (d *Dispatcher) sendEmail(ctx context.Context, in DispatchInput) {
	if !in.EmailRequested || in.Customer == nil || in.Customer.Email == "" {
		return
	}

	msg, err := d.renderer.RenderConfirmation(in.Appointment, in.Customer, in.Location, in.ManageURL)
	if err != nil {
		log.Printf("confirmation render failed for appointment %d: %v", in.Appointment.ID, err)
		return
	}

	if err := d.mailer.Send(ctx, in.Customer.Email, msg); err != nil {
		log.Printf("confirmation email failed for appointment %d: %v", in.Appointment.ID, err)
	}
}

// SMS e WhatsApp são mutuamente exclusivos quando o opt-in de WhatsApp
// está ativo e o modo do local não é "both".
func (d *Dispatcher) smsEffective(in DispatchInput) bool {
	if !in.Location.SMSEnabled || !in.SMSRequested {
		return false
	}

	whatsappActive := in.Location.WhatsAppEnabled && in.WhatsAppOptIn
	if whatsappActive && in.Location.ManualConfirmationMode != models.ManualConfirmationBoth {
		return false
	}

	return in.Location.ManualConfirmationMode != models.ManualConfirmationWhatsApp
}

func (d *Dispatcher) sendSMS(ctx context.Context, in DispatchInput) {
	if !d.smsEffective(in) || in.Customer == nil || in.Customer.Phone == "" {
		return
	}

	text := d.renderer.RenderSMS(in.Appointment, in.Location, in.SMSURL)

	if err := d.sms.Send(ctx, in.Customer.Phone, text); err != nil {
		log.Printf("confirmation sms failed for appointment %d: %v", in.Appointment.ID, err)
	}
}

func (d *Dispatcher) sendWhatsApp(ctx context.Context, in DispatchInput) {
	if !in.Location.WhatsAppEnabled || !in.WhatsAppOptIn {
		return
	}
	if in.Customer == nil || in.Customer.Phone == "" {
		return
	}

	template, params := d.renderer.RenderWhatsAppTemplate(in.Appointment, in.Customer, in.Location)

	err := d.whatsapp.SendTemplate(ctx, in.Customer.Phone, template, params)
	if err == nil {
		return
	}
	log.Printf("whatsapp template failed for appointment %d, trying fallback: %v", in.Appointment.ID, err)

	fallback := d.renderer.RenderWhatsAppFallback(in.Appointment, in.Customer, in.Location)
	if err := d.whatsapp.SendText(ctx, in.Customer.Phone, fallback); err != nil {
		log.Printf("whatsapp fallback failed for appointment %d: %v", in.Appointment.ID, err)
	}
}

// SendVIPGrant avisa o cliente que ganhou acesso VIP a profissionais
// não listados publicamente. Também best-effort.
func (d *Dispatcher) SendVIPGrant(
	ctx context.Context,
	customer *models.Customer,
	location *models.Location,
	staffNames []string,
) {
	if customer == nil || customer.Email == "" || len(staffNames) == 0 {
		return
	}

	msg, err := d.renderer.RenderVIPGrant(customer, location, staffNames)
	if err != nil {
		log.Printf("vip grant render failed for customer %d: %v", customer.ID, err)
		return
	}

	if err := d.mailer.Send(ctx, customer.Email, msg); err != nil {
		log.Printf("vip grant email failed for customer %d: %v", customer.ID, err)
	}
}
