package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/httpresp"
	"github.com/salonkit/salon-scheduler/internal/middleware"
	ucBooking "github.com/salonkit/salon-scheduler/internal/usecase/booking"
)

type HoldHandler struct {
	holds *ucBooking.ManageHolds
}

func NewHoldHandler(holds *ucBooking.ManageHolds) *HoldHandler {
	return &HoldHandler{holds: holds}
}

type PlaceHoldRequest struct {
	StaffID      uint     `json:"staff_id" binding:"required"`
	Start        string   `json:"start" binding:"required"`
	End          string   `json:"end" binding:"required"`
	ServiceNames []string `json:"service_names"`
	PIN          string   `json:"pin" binding:"required"`
}

type ReleaseHoldRequest struct {
	Key string `json:"key" binding:"required"`
	PIN string `json:"pin" binding:"required"`
}

func (h *HoldHandler) Place(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var req PlaceHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Horário inicial inválido.")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		httperr.BadRequest(c, "invalid_end", "Horário final inválido.")
		return
	}

	held, err := h.holds.Place(c.Request.Context(), ucBooking.PlaceHoldInput{
		LocationID:   locationID,
		StaffID:      req.StaffID,
		Start:        start,
		End:          end,
		ServiceNames: req.ServiceNames,
		Actor:        ucBooking.Actor{StaffID: staffID, PIN: req.PIN},
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, held)
}

func (h *HoldHandler) List(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	held, err := h.holds.List(c.Request.Context(), locationID)
	if err != nil {
		httperr.Internal(c, "hold_list_failed", "Erro ao listar reservas.")
		return
	}

	httpresp.List(c, held)
}

func (h *HoldHandler) Release(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var req ReleaseHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	err := h.holds.Release(c.Request.Context(), locationID, req.Key, ucBooking.Actor{
		StaffID: staffID,
		PIN:     req.PIN,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"released": true})
}
