package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/middleware"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/timezone"
)

type LocationHandler struct {
	db *gorm.DB
}

func NewLocationHandler(db *gorm.DB) *LocationHandler {
	return &LocationHandler{db: db}
}

type UpdateLocationConfigRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Timezone *string `json:"timezone"`

	MinAdvanceMinutes  *int `json:"min_advance_minutes"`
	MaxAdvanceMinutes  *int `json:"max_advance_minutes"`
	ServicesPerBooking *int `json:"services_per_booking"`

	CancellationDeadlineHours *int    `json:"cancellation_deadline_hours"`
	ManualConfirmationMode    *string `json:"manual_confirmation_mode"`

	SMSEnabled      *bool `json:"sms_enabled"`
	WhatsAppEnabled *bool `json:"whatsapp_enabled"`
}

func (h *LocationHandler) GetMeLocation(c *gin.Context) {
	locationIDVal, _ := c.Get(middleware.ContextLocationID)
	locationID := locationIDVal.(uint)

	var location models.Location
	if err := h.db.First(&location, locationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "location_not_found", "Local não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_get_location", "Erro ao buscar dados do local.")
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) UpdateMeLocation(c *gin.Context) {
	locationIDVal, _ := c.Get(middleware.ContextLocationID)
	locationID := locationIDVal.(uint)
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	var location models.Location
	if err := h.db.First(&location, locationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "location_not_found", "Local não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_get_location", "Erro ao buscar dados do local.")
		return
	}

	var req UpdateLocationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Phone != nil {
		location.Phone = *req.Phone
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		location.Timezone = *req.Timezone
	}

	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		location.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.MaxAdvanceMinutes != nil {
		if *req.MaxAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_max_advance", "Antecedência máxima deve ser zero ou positiva (em minutos).")
			return
		}
		location.MaxAdvanceMinutes = *req.MaxAdvanceMinutes
	}
	if req.ServicesPerBooking != nil {
		if *req.ServicesPerBooking < 1 {
			httperr.BadRequest(c, "invalid_services_per_booking", "Limite de serviços deve ser pelo menos 1.")
			return
		}
		location.ServicesPerBooking = *req.ServicesPerBooking
	}

	if req.CancellationDeadlineHours != nil {
		if *req.CancellationDeadlineHours < 0 {
			httperr.BadRequest(c, "invalid_cancellation_deadline", "Prazo de cancelamento inválido.")
			return
		}
		location.CancellationDeadlineHours = *req.CancellationDeadlineHours
	}
	if req.ManualConfirmationMode != nil {
		switch *req.ManualConfirmationMode {
		case models.ManualConfirmationSMS, models.ManualConfirmationWhatsApp, models.ManualConfirmationBoth:
			location.ManualConfirmationMode = *req.ManualConfirmationMode
		default:
			httperr.BadRequest(c, "invalid_confirmation_mode", "Modo de confirmação inválido.")
			return
		}
	}

	if req.SMSEnabled != nil {
		location.SMSEnabled = *req.SMSEnabled
	}
	if req.WhatsAppEnabled != nil {
		location.WhatsAppEnabled = *req.WhatsAppEnabled
	}

	if err := h.db.Save(&location).Error; err != nil {
		httperr.Internal(c, "failed_to_update_location", "Erro ao salvar as configurações do local.")
		return
	}

	writeAudit(h.db, locationID, &staffID, "location_config_updated", "location", &location.ID, nil)

	c.JSON(http.StatusOK, location)
}
