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
// CANCEL (balcão)
// ======================================================

type CancelInput struct {
	LocationID    uint
	AppointmentID uint
	Reason        string
	Actor         Actor
}

// O audit do cancelamento participa da transação; dispatcher
// assíncrono não entra aqui.
type CancelBooking struct {
	repo     domain.Repository
	verifier identity.ActorVerifier
	sync     syncbus.Publisher

	now func() time.Time
}

func NewCancelBooking(
	repo domain.Repository,
	verifier identity.ActorVerifier,
	syncPublisher syncbus.Publisher,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		verifier: verifier,
		sync:     syncPublisher,
		now:      time.Now,
	}
}

func (uc *CancelBooking) Execute(ctx context.Context, in CancelInput) (*models.Appointment, error) {
	if !uc.verifier.Verify(ctx, in.Actor.PIN, in.Actor.StaffID) {
		return nil, httperr.ErrAuthorization("invalid_pin")
	}

	worksAt, err := uc.repo.StaffWorksAt(ctx, in.Actor.StaffID, in.LocationID)
	if err != nil {
		return nil, err
	}
	if !worksAt {
		return nil, httperr.ErrTenant("actor_not_in_location")
	}

	var ap *models.Appointment

	txErr := uc.repo.InTx(ctx, txTimeout(1), func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, in.LocationID, in.AppointmentID)
		if err != nil {
			return err
		}

		before := auditJSON(ap)

		if err := domain.Cancel(ap, uc.now()); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.CreateAuditLog(ctx, &models.AuditLog{
			LocationID: in.LocationID,
			StaffID:    &in.Actor.StaffID,
			Action:     "appointment_cancelled",
			Entity:     "appointment",
			EntityID:   &ap.ID,
			Before:     before,
			After:      auditJSON(ap),
			Metadata:   auditJSON(map[string]any{"reason": in.Reason}),
		})
	})

	if txErr != nil {
		return nil, txErr
	}

	uc.sync.Publish(in.LocationID, syncbus.ActionCancelled, []uint{ap.ID})
	return ap, nil
}

// ======================================================
// SELF-SERVICE CANCEL (link do cliente)
// ======================================================
// O cliente cancela pelo token do email/SMS. O token expira no mais
// restrito entre o início do atendimento e o deadline de cancelamento
// do local, então token válido = cancelamento permitido.

type SelfCancelInput struct {
	TokenValue string
	Reason     string
}

type SelfServiceCancel struct {
	repo domain.Repository
	sync syncbus.Publisher

	now func() time.Time
}

func NewSelfServiceCancel(
	repo domain.Repository,
	syncPublisher syncbus.Publisher,
) *SelfServiceCancel {
	return &SelfServiceCancel{
		repo: repo,
		sync: syncPublisher,
		now:  time.Now,
	}
}

func (uc *SelfServiceCancel) Execute(ctx context.Context, in SelfCancelInput) (*models.Appointment, error) {
	token, err := uc.repo.GetAccessToken(ctx, in.TokenValue)
	if err != nil {
		return nil, httperr.ErrAuthorization("invalid_token")
	}

	now := uc.now()
	if !token.ExpiresAt.After(now) {
		return nil, httperr.ErrBusiness("cancellation_deadline_passed")
	}

	var (
		ap         *models.Appointment
		locationID uint
	)

	txErr := uc.repo.InTx(ctx, txTimeout(1), func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointmentByID(ctx, token.AppointmentID)
		if err != nil {
			return err
		}
		locationID = ap.LocationID

		before := auditJSON(ap)

		if err := domain.Cancel(ap, now); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.CreateAuditLog(ctx, &models.AuditLog{
			LocationID: locationID,
			Action:     "appointment_cancelled_by_customer",
			Entity:     "appointment",
			EntityID:   &ap.ID,
			Before:     before,
			After:      auditJSON(ap),
			Metadata:   auditJSON(map[string]any{"reason": in.Reason, "via": "access_token"}),
		})
	})

	if txErr != nil {
		return nil, txErr
	}

	uc.sync.Publish(locationID, syncbus.ActionCancelled, []uint{ap.ID})
	return ap, nil
}
