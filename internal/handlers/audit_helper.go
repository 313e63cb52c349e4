package handlers

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/models"
)

func writeAudit(
	db *gorm.DB,
	locationID uint,
	staffID *uint,
	action string,
	entity string,
	entityID *uint,
	meta any,
) {

	var payload string
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			payload = string(b)
		}
	}

	log := models.AuditLog{
		LocationID: locationID,
		StaffID:    staffID,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		Metadata:   payload,
	}

	db.Create(&log)
}
