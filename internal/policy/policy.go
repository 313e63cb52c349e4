package policy

import (
	"context"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// Preferências operacionais de um local. O carregamento real (painel
// de configuração) fica fora deste módulo; aqui só o contrato.
type Preferences struct {
	MinAdvanceMinutes         int
	MaxAdvanceMinutes         int
	ServicesPerBooking        int
	CancellationDeadlineHours int
	ManualConfirmationMode    string
}

type Loader interface {
	Load(ctx context.Context, locationID uint) (Preferences, error)
}

// ======================================================
// LOCATION-BACKED LOADER
// ======================================================

type locationGetter interface {
	GetLocationByID(ctx context.Context, id uint) (*models.Location, error)
}

// RepositoryLoader lê as preferências da própria Location persistida.
type RepositoryLoader struct {
	repo locationGetter
}

func NewRepositoryLoader(repo locationGetter) *RepositoryLoader {
	return &RepositoryLoader{repo: repo}
}

func (l *RepositoryLoader) Load(ctx context.Context, locationID uint) (Preferences, error) {
	loc, err := l.repo.GetLocationByID(ctx, locationID)
	if err != nil {
		return Preferences{}, err
	}

	prefs := Preferences{
		MinAdvanceMinutes:         loc.MinAdvanceMinutes,
		MaxAdvanceMinutes:         loc.MaxAdvanceMinutes,
		ServicesPerBooking:        loc.ServicesPerBooking,
		CancellationDeadlineHours: loc.CancellationDeadlineHours,
		ManualConfirmationMode:    loc.ManualConfirmationMode,
	}

	if prefs.MinAdvanceMinutes <= 0 {
		prefs.MinAdvanceMinutes = 120
	}
	if prefs.ServicesPerBooking <= 0 {
		prefs.ServicesPerBooking = 5
	}

	return prefs, nil
}

var _ Loader = (*RepositoryLoader)(nil)
