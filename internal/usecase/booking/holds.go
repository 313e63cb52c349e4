package booking

import (
	"context"
	"strings"
	"time"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/identity"
)

// ======================================================
// MANUAL HOLDS
// ======================================================
// A recepção pode segurar um slot sem criar agendamento ("cliente vai
// confirmar por telefone"). O hold some sozinho no TTL.

type PlaceHoldInput struct {
	LocationID   uint
	StaffID      uint
	Start        time.Time
	End          time.Time
	ServiceNames []string
	Actor        Actor
}

type ManageHolds struct {
	repo     domain.Repository
	store    hold.Store
	verifier identity.ActorVerifier

	manualTTL time.Duration
}

func NewManageHolds(
	repo domain.Repository,
	store hold.Store,
	verifier identity.ActorVerifier,
	manualTTL time.Duration,
) *ManageHolds {
	return &ManageHolds{
		repo:      repo,
		store:     store,
		verifier:  verifier,
		manualTTL: manualTTL,
	}
}

func (uc *ManageHolds) Place(ctx context.Context, in PlaceHoldInput) (*hold.Hold, error) {
	if !in.End.After(in.Start) {
		return nil, httperr.ErrBusiness("invalid_time_range")
	}

	if err := uc.authorize(ctx, in.Actor, in.LocationID); err != nil {
		return nil, err
	}

	worksAt, err := uc.repo.StaffWorksAt(ctx, in.StaffID, in.LocationID)
	if err != nil {
		return nil, err
	}
	if !worksAt {
		return nil, httperr.ErrTenant("staff_not_in_location")
	}

	actor, err := uc.repo.GetStaffByID(ctx, in.Actor.StaffID)
	if err != nil {
		return nil, err
	}

	h := hold.Hold{
		LocationID:    in.LocationID,
		StaffID:       in.StaffID,
		Start:         in.Start,
		End:           in.End,
		Discriminator: hold.ManualDiscriminator(),
		ServiceNames:  in.ServiceNames,
		CreatedBy:     actor.Name,
	}

	if err := uc.store.Store(ctx, h, uc.manualTTL); err != nil {
		return nil, err
	}

	h.ExpiresAt = time.Now().Add(uc.manualTTL)
	return &h, nil
}

func (uc *ManageHolds) List(ctx context.Context, locationID uint) ([]hold.Hold, error) {
	return uc.store.List(ctx, locationID)
}

// Release aceita só chaves do próprio local: a chave carrega o
// locationID no prefixo, então a checagem é estrutural.
func (uc *ManageHolds) Release(ctx context.Context, locationID uint, key string, actor Actor) error {
	if err := uc.authorize(ctx, actor, locationID); err != nil {
		return err
	}

	if !strings.HasPrefix(key, hold.LocationPrefix(locationID)) {
		return httperr.ErrTenant("hold_not_in_location")
	}

	return uc.store.Remove(ctx, key)
}

func (uc *ManageHolds) authorize(ctx context.Context, actor Actor, locationID uint) error {
	if !uc.verifier.Verify(ctx, actor.PIN, actor.StaffID) {
		return httperr.ErrAuthorization("invalid_pin")
	}

	worksAt, err := uc.repo.StaffWorksAt(ctx, actor.StaffID, locationID)
	if err != nil {
		return err
	}
	if !worksAt {
		return httperr.ErrTenant("actor_not_in_location")
	}
	return nil
}
