package booking

import (
	"time"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment, now time.Time) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusNoShow)
	return nil
}

// Shift desloca o agendamento e todos os seus itens pelo mesmo delta,
// preservando offsets relativos e durações.
func Shift(ap *models.Appointment, delta time.Duration) {
	ap.StartTime = ap.StartTime.Add(delta)
	ap.EndTime = ap.EndTime.Add(delta)

	for i := range ap.Items {
		ap.Items[i].StartTime = ap.Items[i].StartTime.Add(delta)
		ap.Items[i].EndTime = ap.Items[i].EndTime.Add(delta)
	}
}
