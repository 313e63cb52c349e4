package booking

import (
	"context"
	"time"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/timezone"
)

// ======================================================
// LIST (agenda do dia / visão do mês)
// ======================================================

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ByDay devolve os atendimentos do dia no fuso do local, ordenados
// pelo horário de início. StaffID opcional filtra a coluna do
// profissional no calendário.
func (uc *ListAppointments) ByDay(
	ctx context.Context,
	locationID uint,
	dateStr string,
	staffID *uint,
) ([]models.Appointment, error) {

	loc, err := uc.repo.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	date, err := timezone.ParseDate(loc.Timezone, dateStr)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24 * time.Hour)

	return uc.list(ctx, locationID, start, end, staffID)
}

// ByMonth cobre o grid do calendário mensal.
func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	locationID uint,
	year int,
	month int,
	staffID *uint,
) ([]models.Appointment, error) {

	if year < 2000 || year > 2100 {
		return nil, httperr.ErrBusiness("invalid_year")
	}
	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	loc, err := uc.repo.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	tz := timezone.Location(loc.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, tz)
	end := start.AddDate(0, 1, 0)

	return uc.list(ctx, locationID, start, end, staffID)
}

func (uc *ListAppointments) list(
	ctx context.Context,
	locationID uint,
	start time.Time,
	end time.Time,
	staffID *uint,
) ([]models.Appointment, error) {

	aps, err := uc.repo.ListAppointmentsForPeriod(ctx, locationID, start, end)
	if err != nil {
		return nil, err
	}

	if staffID == nil {
		return aps, nil
	}

	filtered := make([]models.Appointment, 0, len(aps))
	for _, ap := range aps {
		for _, item := range ap.Items {
			if item.StaffID != nil && *item.StaffID == *staffID {
				filtered = append(filtered, ap)
				break
			}
		}
	}
	return filtered, nil
}
