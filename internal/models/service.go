package models

import (
	"database/sql/driver"
	"time"
)

// ServiceStep descreve uma etapa do serviço (ex: aplicar química,
// pausa, finalização). Etapas podem exigir um recurso exclusivo
// (cadeira de lavagem, sala, equipamento).
type ServiceStep struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	ResourceID  *uint  `json:"resource_id,omitempty"`
}

// ServiceMeta é o blob livre do serviço, tipado por campo.
type ServiceMeta struct {
	OnlineBookable   bool          `json:"online_bookable"`
	AssignedStaffIDs []uint        `json:"assigned_staff_ids,omitempty"`
	Steps            []ServiceStep `json:"steps,omitempty"`
}

func (m ServiceMeta) Value() (driver.Value, error) { return jsonValue(m) }
func (m *ServiceMeta) Scan(src any) error          { return jsonScan(m, src) }

func (m ServiceMeta) IsAssigned(staffID uint) bool {
	for _, id := range m.AssignedStaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

type Service struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	LocationID uint `gorm:"index;not null" json:"location_id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
	Active      bool    `gorm:"default:true" json:"active"`

	Category string `gorm:"size:50" json:"category"`

	Metadata ServiceMeta `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
