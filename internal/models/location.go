package models

import "time"

// Modo de confirmação manual por local: define quais canais podem
// receber a confirmação (sms, whatsapp ou ambos).
const (
	ManualConfirmationSMS      = "sms"
	ManualConfirmationWhatsApp = "whatsapp"
	ManualConfirmationBoth     = "both"
)

type Location struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TenantID uint   `gorm:"index;not null" json:"tenant_id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Slug     string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone    string `gorm:"size:20" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	Timezone string `gorm:"size:50" json:"timezone"`

	// Preferências de agendamento
	MinAdvanceMinutes  int `gorm:"default:120" json:"min_advance_minutes"`
	MaxAdvanceMinutes  int `gorm:"default:0" json:"max_advance_minutes"` // 0 = sem limite
	ServicesPerBooking int `gorm:"default:5" json:"services_per_booking"`

	// Política de cancelamento / confirmação
	CancellationDeadlineHours int    `gorm:"default:24" json:"cancellation_deadline_hours"`
	ManualConfirmationMode    string `gorm:"size:20;default:'sms'" json:"manual_confirmation_mode"`

	SMSEnabled      bool `gorm:"default:false" json:"sms_enabled"`
	WhatsAppEnabled bool `gorm:"default:false" json:"whatsapp_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
