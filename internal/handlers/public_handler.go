package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/httpresp"
	"github.com/salonkit/salon-scheduler/internal/models"
	ucBooking "github.com/salonkit/salon-scheduler/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////
// Vitrine pública por slug: catálogo, disponibilidade, hold de
// checkout, criação online e cancelamento self-service.

type PublicHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	availability *AvailabilityHandler
	create       *ucBooking.CreateBooking
	selfCancel   *ucBooking.SelfServiceCancel
	holds        hold.Store

	onlineHoldTTL time.Duration
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	availability *AvailabilityHandler,
	create *ucBooking.CreateBooking,
	selfCancel *ucBooking.SelfServiceCancel,
	holds hold.Store,
	onlineHoldTTL time.Duration,
) *PublicHandler {
	return &PublicHandler{
		db:            db,
		repo:          repo,
		availability:  availability,
		create:        create,
		selfCancel:    selfCancel,
		holds:         holds,
		onlineHoldTTL: onlineHoldTTL,
	}
}

func (h *PublicHandler) locationBySlug(c *gin.Context) (*models.Location, bool) {
	location, err := h.repo.GetLocationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "location_not_found", "Estabelecimento não encontrado.")
		return nil, false
	}
	return location, true
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	location, ok := h.locationBySlug(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.Where("location_id = ? AND active = true", location.ID)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	// a vitrine só mostra o que é agendável online
	visible := make([]models.Service, 0, len(services))
	for _, svc := range services {
		if svc.Metadata.OnlineBookable {
			visible = append(visible, svc)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"location": gin.H{
			"id":       location.ID,
			"name":     location.Name,
			"slug":     location.Slug,
			"timezone": location.Timezone,
		},
		"services": visible,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY (REUSO TOTAL DO USE CASE)
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	location, ok := h.locationBySlug(c)
	if !ok {
		return
	}

	h.availability.resolve(c, location.ID)
}

////////////////////////////////////////////////////////
// CHECKOUT HOLD
////////////////////////////////////////////////////////

type PublicHoldRequest struct {
	StaffID   uint   `json:"staff_id" binding:"required"`
	Start     string `json:"start" binding:"required"`
	End       string `json:"end" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// PlaceHold segura o slot durante o checkout online. O discriminador
// é o id da sessão do cliente, então refresh da página reusa a mesma
// chave em vez de acumular holds.
func (h *PublicHandler) PlaceHold(c *gin.Context) {
	location, ok := h.locationBySlug(c)
	if !ok {
		return
	}

	var req PublicHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Horário inválido.")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil || !end.After(start) {
		httperr.BadRequest(c, "invalid_end", "Horário inválido.")
		return
	}

	held := hold.Hold{
		LocationID:    location.ID,
		StaffID:       req.StaffID,
		Start:         start,
		End:           end,
		Discriminator: req.SessionID,
	}

	if err := h.holds.Store(c.Request.Context(), held, h.onlineHoldTTL); err != nil {
		httperr.Internal(c, "hold_failed", "Erro ao reservar horário.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":        held.Key(),
		"expires_in": int(h.onlineHoldTTL.Seconds()),
	})
}

////////////////////////////////////////////////////////
// CREATE (ONLINE)
////////////////////////////////////////////////////////

type PublicCreateRequest struct {
	StaffID uint   `json:"staff_id" binding:"required"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`

	ServiceIDs []uint `json:"service_ids" binding:"required"`

	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`

	NotifyEmail   bool  `json:"notify_email"`
	NotifySMS     bool  `json:"notify_sms"`
	WhatsAppOptIn *bool `json:"whatsapp_opt_in"`

	HoldKey string `json:"hold_key"`
}

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	location, ok := h.locationBySlug(c)
	if !ok {
		return
	}

	var req PublicCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Horário inválido.")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		httperr.BadRequest(c, "invalid_end", "Horário inválido.")
		return
	}

	in := ucBooking.CreateBookingInput{
		LocationID: location.ID,
		StaffID:    req.StaffID,
		Start:      start,
		End:        end,
		Customer: ucBooking.CustomerRequest{
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
			Email: req.CustomerEmail,
		},
		Notifications: ucBooking.NotificationFlags{
			Email:         req.NotifyEmail,
			SMS:           req.NotifySMS,
			WhatsAppOptIn: req.WhatsAppOptIn,
		},
		HoldKey: req.HoldKey,
		// Actor zerado: canal online
	}

	for _, id := range req.ServiceIDs {
		in.Services = append(in.Services, ucBooking.ServiceRequest{ServiceID: id})
	}

	result, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, result)
}

////////////////////////////////////////////////////////
// SELF-SERVICE CANCEL
////////////////////////////////////////////////////////

type SelfCancelRequest struct {
	Reason string `json:"reason"`
}

func (h *PublicHandler) CancelByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httperr.BadRequest(c, "missing_token", "Token obrigatório.")
		return
	}

	var req SelfCancelRequest
	_ = c.ShouldBindJSON(&req) // reason é opcional

	ap, err := h.selfCancel.Execute(c.Request.Context(), ucBooking.SelfCancelInput{
		TokenValue: token,
		Reason:     req.Reason,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"cancelled":         true,
		"appointment_id":    ap.ID,
		"confirmation_code": ap.ConfirmationCode,
	})
}
