package handlers

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/dto"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/httpresp"
	"github.com/salonkit/salon-scheduler/internal/middleware"
	ucBooking "github.com/salonkit/salon-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create     *ucBooking.CreateBooking
	reschedule *ucBooking.RescheduleBooking
	cancel     *ucBooking.CancelBooking
	complete   *ucBooking.CompleteBooking
	list       *ucBooking.ListAppointments
}

func NewBookingHandler(
	create *ucBooking.CreateBooking,
	reschedule *ucBooking.RescheduleBooking,
	cancel *ucBooking.CancelBooking,
	complete *ucBooking.CompleteBooking,
	list *ucBooking.ListAppointments,
) *BookingHandler {
	return &BookingHandler{
		create:     create,
		reschedule: reschedule,
		cancel:     cancel,
		complete:   complete,
		list:       list,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ServiceRequestBody struct {
	ServiceID   uint     `json:"service_id" binding:"required"`
	StaffIDs    []uint   `json:"staff_ids"`
	DurationMin *int     `json:"duration_min"`
	Price       *float64 `json:"price"`
}

type AttachmentBody struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Data        string `json:"data" binding:"required"` // base64
}

type RecurrenceBody struct {
	Frequency string `json:"frequency" binding:"required"`
	Interval  int    `json:"interval"`
	Count     int    `json:"count" binding:"required"`
}

type CreateBookingRequest struct {
	StaffID uint   `json:"staff_id" binding:"required"`
	Start   string `json:"start" binding:"required"` // RFC3339
	End     string `json:"end" binding:"required"`

	Services []ServiceRequestBody `json:"services" binding:"required"`

	CustomerID    *uint  `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	NotifyEmail   bool  `json:"notify_email"`
	NotifySMS     bool  `json:"notify_sms"`
	WhatsAppOptIn *bool `json:"whatsapp_opt_in"`

	Recurrence  *RecurrenceBody  `json:"recurrence"`
	VIPStaffIDs []uint           `json:"vip_staff_ids"`
	Attachments []AttachmentBody `json:"attachments"`

	InternalNote string `json:"internal_note"`
	HoldKey      string `json:"hold_key"`

	PIN string `json:"pin" binding:"required"`
}

type RescheduleRequest struct {
	NewStart   string `json:"new_start" binding:"required"`
	NewStaffID *uint  `json:"new_staff_id"`
	PIN        string `json:"pin" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
	PIN    string `json:"pin" binding:"required"`
}

type CompleteRequest struct {
	MarkPaid bool   `json:"mark_paid"`
	PIN      string `json:"pin" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var req CreateBookingRequest
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

	in := ucBooking.CreateBookingInput{
		LocationID: locationID,
		StaffID:    req.StaffID,
		Start:      start,
		End:        end,
		Customer: ucBooking.CustomerRequest{
			CustomerID: req.CustomerID,
			Name:       req.CustomerName,
			Phone:      req.CustomerPhone,
			Email:      req.CustomerEmail,
		},
		Notifications: ucBooking.NotificationFlags{
			Email:         req.NotifyEmail,
			SMS:           req.NotifySMS,
			WhatsAppOptIn: req.WhatsAppOptIn,
		},
		VIPStaffIDs:  req.VIPStaffIDs,
		InternalNote: req.InternalNote,
		HoldKey:      req.HoldKey,
		Actor:        ucBooking.Actor{StaffID: staffID, PIN: req.PIN},
	}

	for _, svc := range req.Services {
		in.Services = append(in.Services, ucBooking.ServiceRequest{
			ServiceID:   svc.ServiceID,
			StaffIDs:    svc.StaffIDs,
			DurationMin: svc.DurationMin,
			Price:       svc.Price,
		})
	}

	if req.Recurrence != nil {
		in.Recurrence = &domain.Recurrence{
			Frequency: req.Recurrence.Frequency,
			Interval:  req.Recurrence.Interval,
			Count:     req.Recurrence.Count,
		}
	}

	for _, att := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			httperr.BadRequest(c, "invalid_attachment", "Anexo inválido.")
			return
		}
		in.Attachments = append(in.Attachments, ucBooking.AttachmentUpload{
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Data:        data,
		})
	}

	result, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, result)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *BookingHandler) Reschedule(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_item_id", "Item inválido.")
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	newStart, err := time.Parse(time.RFC3339, req.NewStart)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Horário inválido.")
		return
	}

	result, err := h.reschedule.Execute(c.Request.Context(), ucBooking.RescheduleInput{
		LocationID: locationID,
		ItemID:     uint(itemID),
		NewStart:   newStart,
		NewStaffID: req.NewStaffID,
		Actor:      ucBooking.Actor{StaffID: staffID, PIN: req.PIN},
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, result)
}

// ======================================================
// CANCEL / COMPLETE / NO-SHOW
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), ucBooking.CancelInput{
		LocationID:    locationID,
		AppointmentID: uint(id),
		Reason:        req.Reason,
		Actor:         ucBooking.Actor{StaffID: staffID, PIN: req.PIN},
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), ucBooking.CompleteInput{
		LocationID:    locationID,
		AppointmentID: uint(id),
		MarkPaid:      req.MarkPaid,
		Actor:         ucBooking.Actor{StaffID: staffID, PIN: req.PIN},
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	staffID := c.MustGet(middleware.ContextStaffID).(uint)
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.complete.MarkNoShow(c.Request.Context(), ucBooking.NoShowInput{
		LocationID:    locationID,
		AppointmentID: uint(id),
		Actor:         ucBooking.Actor{StaffID: staffID, PIN: req.PIN},
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	staffID := optionalStaffID(c)

	aps, err := h.list.ByDay(c.Request.Context(), locationID, dateStr, staffID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, dto.CalendarEntries(aps))
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	staffID := optionalStaffID(c)

	aps, err := h.list.ByMonth(c.Request.Context(), locationID, year, month, staffID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, dto.CalendarEntries(aps))
}

func optionalStaffID(c *gin.Context) *uint {
	raw := c.Query("staff_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}
