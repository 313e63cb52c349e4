package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/httpresp"
	"github.com/salonkit/salon-scheduler/internal/middleware"
	ucBooking "github.com/salonkit/salon-scheduler/internal/usecase/booking"
)

type AvailabilityHandler struct {
	availability *ucBooking.GetAvailability
}

func NewAvailabilityHandler(availability *ucBooking.GetAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Get resolve os slots livres do período. Query:
//
//	from=RFC3339&to=RFC3339&services=1,2&staff=3,4
//
// services é obrigatório; staff vazio = qualquer profissional elegível.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)
	h.resolve(c, locationID)
}

func (h *AvailabilityHandler) resolve(c *gin.Context, locationID uint) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "Período inválido.")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		httperr.BadRequest(c, "invalid_to", "Período inválido.")
		return
	}

	serviceIDs, err := parseIDList(c.Query("services"))
	if err != nil || len(serviceIDs) == 0 {
		httperr.BadRequest(c, "invalid_services", "Serviços obrigatórios.")
		return
	}

	staffIDs, err := parseIDList(c.Query("staff"))
	if err != nil {
		httperr.BadRequest(c, "invalid_staff", "Filtro de profissional inválido.")
		return
	}

	candidates, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		LocationID: locationID,
		From:       from,
		To:         to,
		StaffIDs:   staffIDs,
		ServiceIDs: serviceIDs,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, candidates)
}

func parseIDList(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
