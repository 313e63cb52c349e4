package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/middleware"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/timezone"
)

// Bloqueios de agenda (férias, pausas, eventos internos). O resolver
// de disponibilidade subtrai esses períodos dos horários livres.

type BlockerHandler struct {
	db *gorm.DB
}

func NewBlockerHandler(db *gorm.DB) *BlockerHandler {
	return &BlockerHandler{db: db}
}

// A recepção cria bloqueios a partir da visão do dia, então o request
// carrega data + horários de relógio e o fuso vem do local.
type CreateBlockerRequest struct {
	StaffID uint   `json:"staff_id" binding:"required"`
	Date    string `json:"date" binding:"required"`  // YYYY-MM-DD
	Start   string `json:"start" binding:"required"` // HH:mm
	End     string `json:"end" binding:"required"`   // HH:mm
	Kind    string `json:"kind"`
	Note    string `json:"note"`
}

func (h *BlockerHandler) Create(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	var req CreateBlockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var location models.Location
	if err := h.db.First(&location, locationID).Error; err != nil {
		httperr.Internal(c, "location_load_failed", "Erro ao carregar o local.")
		return
	}

	start, err := timezone.ParseDateTime(location.Timezone, req.Date, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Horário inicial inválido.")
		return
	}
	end, err := timezone.ParseDateTime(location.Timezone, req.Date, req.End)
	if err != nil || !end.After(start) {
		httperr.BadRequest(c, "invalid_end", "Horário final inválido.")
		return
	}

	blocker := models.TimeBlocker{
		LocationID: locationID,
		StaffID:    req.StaffID,
		StartTime:  start,
		EndTime:    end,
		Kind:       req.Kind,
		Note:       req.Note,
	}

	if err := h.db.Create(&blocker).Error; err != nil {
		httperr.Internal(c, "failed_to_create_blocker", "Erro ao criar bloqueio.")
		return
	}

	writeAudit(h.db, locationID, &staffID, "blocker_created", "time_blocker", &blocker.ID, nil)

	c.JSON(http.StatusCreated, blocker)
}

func (h *BlockerHandler) List(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	q := h.db.Where("location_id = ?", locationID)

	if raw := c.Query("staff_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			q = q.Where("staff_id = ?", uint(id))
		}
	}

	var blockers []models.TimeBlocker
	if err := q.Order("start_time ASC").Find(&blockers).Error; err != nil {
		httperr.Internal(c, "failed_to_list_blockers", "Erro ao listar bloqueios.")
		return
	}

	c.JSON(http.StatusOK, blockers)
}

func (h *BlockerHandler) Delete(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)
	staffID := c.MustGet(middleware.ContextStaffID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Bloqueio inválido.")
		return
	}

	result := h.db.
		Where("id = ? AND location_id = ?", id, locationID).
		Delete(&models.TimeBlocker{})

	if result.Error != nil {
		httperr.Internal(c, "failed_to_delete_blocker", "Erro ao remover bloqueio.")
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "blocker_not_found", "Bloqueio não encontrado.")
		return
	}

	blockerID := uint(id)
	writeAudit(h.db, locationID, &staffID, "blocker_deleted", "time_blocker", &blockerID, nil)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
