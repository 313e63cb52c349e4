package booking

import (
	"context"
	"time"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/identity"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/syncbus"
)

// ======================================================
// COMPLETE / NO-SHOW
// ======================================================

type CompleteInput struct {
	LocationID    uint
	AppointmentID uint
	MarkPaid      bool
	Actor         Actor
}

type NoShowInput struct {
	LocationID    uint
	AppointmentID uint
	Actor         Actor
}

// O audit deste fluxo é gravado dentro da própria transação; não há
// dispatcher assíncrono aqui.
type CompleteBooking struct {
	repo     domain.Repository
	verifier identity.ActorVerifier
	sync     syncbus.Publisher

	now func() time.Time
}

func NewCompleteBooking(
	repo domain.Repository,
	verifier identity.ActorVerifier,
	syncPublisher syncbus.Publisher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:     repo,
		verifier: verifier,
		sync:     syncPublisher,
		now:      time.Now,
	}
}

func (uc *CompleteBooking) Execute(ctx context.Context, in CompleteInput) (*models.Appointment, error) {
	ap, err := uc.transition(ctx, in.LocationID, in.AppointmentID, in.Actor,
		"appointment_completed",
		func(ap *models.Appointment, now time.Time) error {
			if err := domain.Complete(ap, now); err != nil {
				return err
			}
			if in.MarkPaid {
				ap.PaymentStatus = domain.PaymentPaid
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	uc.sync.Publish(in.LocationID, syncbus.ActionCompleted, []uint{ap.ID})
	return ap, nil
}

func (uc *CompleteBooking) MarkNoShow(ctx context.Context, in NoShowInput) (*models.Appointment, error) {
	ap, err := uc.transition(ctx, in.LocationID, in.AppointmentID, in.Actor,
		"appointment_no_show", domain.MarkNoShow)
	if err != nil {
		return nil, err
	}

	uc.sync.Publish(in.LocationID, syncbus.ActionNoShow, []uint{ap.ID})
	return ap, nil
}

func (uc *CompleteBooking) transition(
	ctx context.Context,
	locationID uint,
	appointmentID uint,
	actor Actor,
	action string,
	apply func(*models.Appointment, time.Time) error,
) (*models.Appointment, error) {

	if !uc.verifier.Verify(ctx, actor.PIN, actor.StaffID) {
		return nil, httperr.ErrAuthorization("invalid_pin")
	}

	worksAt, err := uc.repo.StaffWorksAt(ctx, actor.StaffID, locationID)
	if err != nil {
		return nil, err
	}
	if !worksAt {
		return nil, httperr.ErrTenant("actor_not_in_location")
	}

	var ap *models.Appointment

	txErr := uc.repo.InTx(ctx, txTimeout(1), func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, locationID, appointmentID)
		if err != nil {
			return err
		}

		before := auditJSON(ap)

		if err := apply(ap, uc.now()); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.CreateAuditLog(ctx, &models.AuditLog{
			LocationID: locationID,
			StaffID:    &actor.StaffID,
			Action:     action,
			Entity:     "appointment",
			EntityID:   &ap.ID,
			Before:     before,
			After:      auditJSON(ap),
		})
	})

	if txErr != nil {
		return nil, txErr
	}
	return ap, nil
}
