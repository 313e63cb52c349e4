package models

import "time"

type WorkingHours struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	StaffID    uint `gorm:"index;not null" json:"staff_id"`
	LocationID uint `gorm:"index;not null" json:"location_id"`

	Weekday int `json:"weekday"`

	StartTime  string `json:"start_time"` // HH:mm
	EndTime    string `json:"end_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bloqueio de agenda: férias, pausa, evento interno.
type TimeBlocker struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	LocationID uint `gorm:"index;not null" json:"location_id"`
	StaffID    uint `gorm:"index;not null" json:"staff_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Kind string `gorm:"size:30" json:"kind"`
	Note string `gorm:"size:255" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
