package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/models"
)

type Entry struct {
	LocationID uint
	StaffID    *uint
	Action     string
	Entity     string
	EntityID   *uint
	Before     any
	After      any
	Metadata   any
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// WithTx devolve um Logger que grava dentro da transação: o audit
// participa do mesmo commit/rollback das escritas que ele descreve.
func (l *Logger) WithTx(tx *gorm.DB) *Logger {
	return &Logger{db: tx}
}

func (l *Logger) Log(e Entry) error {
	entry := models.AuditLog{
		LocationID: e.LocationID,
		StaffID:    e.StaffID,
		Action:     e.Action,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		Before:     marshal(e.Before),
		After:      marshal(e.After),
		Metadata:   marshal(e.Metadata),
	}

	return l.db.Create(&entry).Error
}

var _ Sink = (*Logger)(nil)

func marshal(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
