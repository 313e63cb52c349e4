package models

import "time"

type Staff struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'staff'" json:"role"`

	// PIN usado para comprovar quem executa a ação no balcão
	PINHash string `gorm:"size:255" json:"-"`

	CalendarColor  string `gorm:"size:7" json:"calendar_color"`
	OnlineBookable bool   `gorm:"default:true" json:"online_bookable"`
	Active         bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }

func (s *Staff) IsAdmin() bool {
	return s.Role == "admin"
}

// StaffLocation é a relação de lotação: um profissional pode atender
// em mais de um local.
type StaffLocation struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	StaffID    uint `gorm:"uniqueIndex:idx_staff_location;not null" json:"staff_id"`
	LocationID uint `gorm:"uniqueIndex:idx_staff_location;not null" json:"location_id"`

	CreatedAt time.Time `json:"created_at"`
}
