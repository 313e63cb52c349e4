package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/salonkit/salon-scheduler/internal/audit"
	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/identity"
	"github.com/salonkit/salon-scheduler/internal/locking"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/syncbus"
)

// ======================================================
// RESCHEDULE
// ======================================================
// Mover um item move o agendamento inteiro: todos os itens deslocam
// pelo mesmo delta, preservando offsets e durações. Troca de
// profissional só afeta o item arrastado.

type RescheduleInput struct {
	LocationID uint
	ItemID     uint

	NewStart   time.Time
	NewStaffID *uint // nil = mantém

	Actor Actor
}

type RescheduleResult struct {
	Appointment *models.Appointment `json:"appointment"`

	// Aviso quando o novo horário cai fora da disponibilidade
	// calculada. Reagendamento manual nunca é bloqueado por isso.
	Warning string `json:"warning,omitempty"`
}

type RescheduleBooking struct {
	repo     domain.Repository
	locker   locking.Locker
	verifier identity.ActorVerifier

	sync  syncbus.Publisher
	audit *audit.Dispatcher

	lockTTL time.Duration
}

func NewRescheduleBooking(
	repo domain.Repository,
	locker locking.Locker,
	verifier identity.ActorVerifier,
	syncPublisher syncbus.Publisher,
	auditDispatcher *audit.Dispatcher,
	lockTTL time.Duration,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:     repo,
		locker:   locker,
		verifier: verifier,
		sync:     syncPublisher,
		audit:    auditDispatcher,
		lockTTL:  lockTTL,
	}
}

func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*RescheduleResult, error) {

	if !uc.verifier.Verify(ctx, in.Actor.PIN, in.Actor.StaffID) {
		return nil, httperr.ErrAuthorization("invalid_pin")
	}

	actorAtLocation, err := uc.repo.StaffWorksAt(ctx, in.Actor.StaffID, in.LocationID)
	if err != nil {
		return nil, err
	}
	if !actorAtLocation {
		return nil, httperr.ErrTenant("actor_not_in_location")
	}

	lockKey := locking.RescheduleKey(in.LocationID, in.ItemID)
	token, acquired, lockErr := uc.locker.Acquire(ctx, lockKey, uc.lockTTL)
	if lockErr != nil {
		log.Printf("lock backend unavailable for item %d, proceeding without lock: %v", in.ItemID, lockErr)
		uc.audit.Dispatch(audit.Entry{
			LocationID: in.LocationID,
			StaffID:    &in.Actor.StaffID,
			Action:     "booking_lock_bypassed",
			Entity:     "appointment_item",
			EntityID:   &in.ItemID,
			Metadata:   map[string]any{"error": lockErr.Error()},
		})
	} else if !acquired {
		return nil, httperr.ErrConflict("item_being_moved")
	} else {
		defer uc.locker.Release(ctx, lockKey, token)
	}

	var (
		ap    *models.Appointment
		delta time.Duration
	)

	txErr := uc.repo.InTx(ctx, txTimeout(1), func(tx domain.Repository) error {
		item, err := tx.GetAppointmentItem(ctx, in.ItemID)
		if err != nil {
			return err
		}

		ap, err = tx.GetAppointment(ctx, in.LocationID, item.AppointmentID)
		if err != nil {
			return err
		}

		status := domain.Status(ap.Status)
		if status != domain.StatusPending && status != domain.StatusConfirmed {
			return httperr.ErrBusiness("appointment_not_reschedulable")
		}

		before := auditJSON(ap)

		delta = in.NewStart.Sub(item.StartTime)
		domain.Shift(ap, delta)

		if in.NewStaffID != nil {
			if err := uc.validateStaffChange(ctx, tx, in, *in.NewStaffID); err != nil {
				return err
			}
			for i := range ap.Items {
				if ap.Items[i].ID == in.ItemID {
					ap.Items[i].StaffID = in.NewStaffID
				}
			}
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.CreateAuditLog(ctx, &models.AuditLog{
			LocationID: in.LocationID,
			StaffID:    &in.Actor.StaffID,
			Action:     "appointment_rescheduled",
			Entity:     "appointment",
			EntityID:   &ap.ID,
			Before:     before,
			After:      auditJSON(ap),
			Metadata: auditJSON(map[string]any{
				"item_id":      in.ItemID,
				"delta_min":    int(delta.Minutes()),
				"new_staff_id": in.NewStaffID,
			}),
		})
	})

	if txErr != nil {
		return nil, txErr
	}

	result := &RescheduleResult{
		Appointment: ap,
		Warning:     uc.conflictWarning(ctx, in, ap),
	}

	uc.sync.Publish(in.LocationID, syncbus.ActionRescheduled, []uint{ap.ID})

	return result, nil
}

func (uc *RescheduleBooking) validateStaffChange(
	ctx context.Context,
	tx domain.Repository,
	in RescheduleInput,
	staffID uint,
) error {

	staff, err := tx.GetStaffByID(ctx, staffID)
	if err != nil {
		return httperr.ErrBusiness("staff_not_found")
	}
	if !staff.Active {
		return httperr.ErrConflict("staff_inactive")
	}

	worksAt, err := tx.StaffWorksAt(ctx, staffID, in.LocationID)
	if err != nil {
		return err
	}
	if !worksAt {
		return httperr.ErrConflict("staff_not_at_location")
	}

	return nil
}

// conflictWarning procura sobreposição com outros atendimentos dos
// profissionais envolvidos. Só informa; a recepção decide.
func (uc *RescheduleBooking) conflictWarning(
	ctx context.Context,
	in RescheduleInput,
	ap *models.Appointment,
) string {

	for _, item := range ap.Items {
		if item.StaffID == nil {
			continue
		}

		others, err := uc.repo.ListItemsForStaffRange(ctx, *item.StaffID, item.StartTime, item.EndTime)
		if err != nil {
			continue // aviso é best-effort
		}

		for _, other := range others {
			if other.AppointmentID == ap.ID {
				continue
			}
			return fmt.Sprintf(
				"horário conflita com outro atendimento do profissional %d às %s",
				*item.StaffID,
				other.StartTime.Format("15:04"),
			)
		}
	}

	return ""
}
