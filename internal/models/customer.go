package models

import (
	"database/sql/driver"
	"time"
)

type CustomerMeta struct {
	Notes    string   `json:"notes,omitempty"`
	Birthday string   `json:"birthday,omitempty"` // YYYY-MM-DD
	Tags     []string `json:"tags,omitempty"`
}

func (m CustomerMeta) Value() (driver.Value, error) { return jsonValue(m) }
func (m *CustomerMeta) Scan(src any) error          { return jsonScan(m, src) }

// Cliente sem login, vinculado ao local (compartilhável entre locais
// do mesmo tenant via lookup por contato).
type Customer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	LocationID uint `gorm:"index;not null" json:"location_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	Metadata CustomerMeta `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ======================================================
// CONSENT
// ======================================================

const (
	ConsentTypeEmail    = "EMAIL"
	ConsentTypeSMS      = "SMS"
	ConsentTypeWhatsApp = "WHATSAPP"

	ConsentScopeNotifications = "notifications"
)

type ConsentMeta struct {
	Method    string `json:"method,omitempty"`    // como o consentimento foi obtido
	Reference string `json:"reference,omitempty"` // ex: código do agendamento
	Note      string `json:"note,omitempty"`
}

func (m ConsentMeta) Value() (driver.Value, error) { return jsonValue(m) }
func (m *ConsentMeta) Scan(src any) error          { return jsonScan(m, src) }

// Consent: no máximo um registro ativo por (customer, location, type, scope).
// Grant => GrantedAt preenchido e RevokedAt nulo.
// Revoke => Granted=false e RevokedAt preenchido.
type Consent struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CustomerID uint `gorm:"uniqueIndex:idx_consent_scope;not null" json:"customer_id"`
	LocationID uint `gorm:"uniqueIndex:idx_consent_scope;not null" json:"location_id"`

	Type  string `gorm:"size:20;uniqueIndex:idx_consent_scope;not null" json:"type"`
	Scope string `gorm:"size:50;uniqueIndex:idx_consent_scope;not null" json:"scope"`

	Granted   bool       `json:"granted"`
	GrantedAt *time.Time `json:"granted_at"`
	RevokedAt *time.Time `json:"revoked_at"`

	Metadata ConsentMeta `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Consent) IsActiveGrant() bool {
	return c.Granted && c.GrantedAt != nil && c.RevokedAt == nil
}

// ======================================================
// VIP BOOKING PERMISSION
// ======================================================

// BookingPermission libera um cliente específico para agendar online
// com um profissional que não é publicamente agendável.
type BookingPermission struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CustomerID uint `gorm:"uniqueIndex:idx_booking_permission;not null" json:"customer_id"`
	LocationID uint `gorm:"uniqueIndex:idx_booking_permission;not null" json:"location_id"`
	StaffID    uint `gorm:"uniqueIndex:idx_booking_permission;not null" json:"staff_id"`

	GrantedByID *uint `json:"granted_by_id"`

	CreatedAt time.Time `json:"created_at"`
}
