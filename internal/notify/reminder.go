package notify

import (
	"context"
	"log"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// ReminderScheduler agenda o lembrete pré-atendimento de uma
// ocorrência. O job runner real vive fora do módulo; aqui só o
// contrato e um stub de desenvolvimento.
type ReminderScheduler interface {
	Schedule(ctx context.Context, ap *models.Appointment)
}

type LogReminderScheduler struct{}

func (LogReminderScheduler) Schedule(_ context.Context, ap *models.Appointment) {
	log.Printf("reminder scheduled: appointment %d at %s", ap.ID, ap.StartTime.Format("2006-01-02 15:04"))
}

var _ ReminderScheduler = LogReminderScheduler{}
