package models

import (
	"database/sql/driver"
	"time"
)

// RepeatDescriptor marca cada ocorrência de uma série recorrente.
type RepeatDescriptor struct {
	SeriesID  string    `json:"seriesId"`
	Frequency string    `json:"frequency"` // DAILY | WEEKLY
	Interval  int       `json:"interval"`
	Until     time.Time `json:"until"`
	Index     int       `json:"index"`
}

type AppointmentMeta struct {
	Repeat           *RepeatDescriptor `json:"repeat,omitempty"`
	AssignedStaffIDs []uint            `json:"assigned_staff_ids,omitempty"`
	InternalNote     string            `json:"internal_note,omitempty"`
}

func (m AppointmentMeta) Value() (driver.Value, error) { return jsonValue(m) }
func (m *AppointmentMeta) Scan(src any) error          { return jsonScan(m, src) }

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LocationID uint     `gorm:"index;not null" json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	CustomerID *uint     `gorm:"index" json:"customer_id"`
	Customer   *Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"customer,omitempty"`

	// Código de confirmação legível, compartilhável com o cliente
	ConfirmationCode string `gorm:"size:6;uniqueIndex;not null" json:"confirmation_code"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status        string `gorm:"size:20;default:'CONFIRMED'" json:"status"`
	PaymentStatus string `gorm:"size:20;default:'UNPAID'" json:"payment_status"`

	TotalAmount float64 `json:"total_amount"`

	Metadata AppointmentMeta `gorm:"type:jsonb" json:"metadata"`

	// Itens pertencem exclusivamente ao agendamento (cascade)
	Items []AppointmentItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ======================================================
// APPOINTMENT ITEM
// ======================================================

// StepsSnapshot congela as etapas do serviço no momento do
// agendamento; nunca é reescrito depois.
type StepsSnapshot []ServiceStep

func (s StepsSnapshot) Value() (driver.Value, error) { return jsonValue(s) }
func (s *StepsSnapshot) Scan(src any) error          { return jsonScan(s, src) }

type AppointmentItem struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"index;not null" json:"appointment_id"`

	ServiceID uint `gorm:"not null" json:"service_id"`

	// Profissional e recurso são referências opcionais, nunca sentinela
	StaffID    *uint `gorm:"index" json:"staff_id"`
	ResourceID *uint `json:"resource_id"`

	Sequence  int       `json:"sequence"`
	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Price float64 `json:"price"`

	StepsSnapshot StepsSnapshot `gorm:"type:jsonb" json:"steps_snapshot"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ======================================================
// ATTACHMENT
// ======================================================

type Attachment struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"index;not null" json:"appointment_id"`

	FileName    string `gorm:"size:255;not null" json:"file_name"`
	ContentType string `gorm:"size:100" json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `gorm:"size:255" json:"storage_key"`

	CreatedAt time.Time `json:"created_at"`
}

// ======================================================
// ACCESS TOKEN
// ======================================================

// AccessToken permite autogestão do agendamento pelo cliente
// (cancelar, consultar) sem autenticação; um por ocorrência.
type AccessToken struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"index;not null" json:"appointment_id"`

	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"token"`
	ShortCode string    `gorm:"size:10;uniqueIndex;not null" json:"short_code"`
	ExpiresAt time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
}
