package models

import "time"

// AuditLog é append-only: registros nunca são atualizados ou removidos.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LocationID uint   `gorm:"index" json:"location_id"`
	StaffID    *uint  `json:"staff_id"`
	Action     string `gorm:"size:50;not null" json:"action"`

	Entity   string `gorm:"size:50" json:"entity"`
	EntityID *uint  `json:"entity_id"`

	// Diff before/after serializado como JSON
	Before   string `gorm:"type:text" json:"before"`
	After    string `gorm:"type:text" json:"after"`
	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
