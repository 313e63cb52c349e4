package dto

import (
	"time"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// CalendarEntryDTO é a projeção enxuta que o grid do calendário
// consome: um registro por agendamento, sem metadata nem snapshots.
type CalendarEntryDTO struct {
	ID               uint      `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Status           string    `json:"status"`
	TotalAmount      float64   `json:"total_amount"`

	CustomerName string `json:"customer_name"`

	StaffIDs []uint                   `json:"staff_ids"`
	Items    []CalendarItemDTO        `json:"items"`
	Repeat   *models.RepeatDescriptor `json:"repeat,omitempty"`
}

type CalendarItemDTO struct {
	ID        uint      `json:"id"`
	ServiceID uint      `json:"service_id"`
	StaffID   *uint     `json:"staff_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func CalendarEntry(ap models.Appointment) CalendarEntryDTO {
	entry := CalendarEntryDTO{
		ID:               ap.ID,
		ConfirmationCode: ap.ConfirmationCode,
		StartTime:        ap.StartTime,
		EndTime:          ap.EndTime,
		Status:           ap.Status,
		TotalAmount:      ap.TotalAmount,
		StaffIDs:         ap.Metadata.AssignedStaffIDs,
		Repeat:           ap.Metadata.Repeat,
	}

	if ap.Customer != nil {
		entry.CustomerName = ap.Customer.Name
	}

	for _, item := range ap.Items {
		entry.Items = append(entry.Items, CalendarItemDTO{
			ID:        item.ID,
			ServiceID: item.ServiceID,
			StaffID:   item.StaffID,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		})
	}

	return entry
}

func CalendarEntries(aps []models.Appointment) []CalendarEntryDTO {
	entries := make([]CalendarEntryDTO, 0, len(aps))
	for _, ap := range aps {
		entries = append(entries, CalendarEntry(ap))
	}
	return entries
}
