package booking

import (
	"context"
	"time"

	"github.com/salonkit/salon-scheduler/internal/models"
)

type Repository interface {
	// InTx executa fn dentro de uma transação com timeout explícito.
	// O Repository recebido por fn opera sobre a transação; o audit
	// gravado por ele participa do mesmo commit/rollback.
	InTx(
		ctx context.Context,
		timeout time.Duration,
		fn func(tx Repository) error,
	) error

	// -------- Location / Staff --------
	GetLocationByID(
		ctx context.Context,
		id uint,
	) (*models.Location, error)

	GetLocationBySlug(
		ctx context.Context,
		slug string,
	) (*models.Location, error)

	GetStaffByID(
		ctx context.Context,
		id uint,
	) (*models.Staff, error)

	StaffWorksAt(
		ctx context.Context,
		staffID uint,
		locationID uint,
	) (bool, error)

	ListStaffForLocation(
		ctx context.Context,
		locationID uint,
	) ([]models.Staff, error)

	// -------- Services --------
	ListServicesByIDs(
		ctx context.Context,
		locationID uint,
		ids []uint,
	) ([]models.Service, error)

	// -------- Customer --------
	GetCustomer(
		ctx context.Context,
		locationID uint,
		customerID uint,
	) (*models.Customer, error)

	FindCustomerByPhone(
		ctx context.Context,
		locationID uint,
		phone string,
	) (*models.Customer, error)

	CreateCustomer(
		ctx context.Context,
		customer *models.Customer,
	) error

	// -------- Consent --------
	FindConsent(
		ctx context.Context,
		customerID uint,
		locationID uint,
		consentType string,
		scope string,
	) (*models.Consent, error)

	CreateConsent(
		ctx context.Context,
		consent *models.Consent,
	) error

	UpdateConsent(
		ctx context.Context,
		consent *models.Consent,
	) error

	// -------- VIP booking permission --------
	ListBookingPermissions(
		ctx context.Context,
		customerID uint,
		locationID uint,
	) ([]models.BookingPermission, error)

	CreateBookingPermission(
		ctx context.Context,
		perm *models.BookingPermission,
	) error

	// -------- Appointment --------

	// AssertNoTimeConflict falha com conflito de negócio se o
	// profissional já tem item vivo tocando a janela [start, end).
	// Chamada dentro da transação de criação: junto com o lock por
	// local, é o que impede double booking.
	AssertNoTimeConflict(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) error

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		locationID uint,
		id uint,
	) (*models.Appointment, error)

	// GetAppointmentByID busca sem escopo de local; uso restrito a
	// fluxos autenticados por access token, onde o local ainda não é
	// conhecido.
	GetAppointmentByID(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentItem(
		ctx context.Context,
		id uint,
	) (*models.AppointmentItem, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsForPeriod(
		ctx context.Context,
		locationID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Access token / attachment --------
	CreateAccessToken(
		ctx context.Context,
		token *models.AccessToken,
	) error

	GetAccessToken(
		ctx context.Context,
		value string,
	) (*models.AccessToken, error)

	CreateAttachment(
		ctx context.Context,
		att *models.Attachment,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		staffID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListItemsForStaffRange(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) ([]models.AppointmentItem, error)

	ListTimeBlockers(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) ([]models.TimeBlocker, error)

	// -------- Audit --------
	CreateAuditLog(
		ctx context.Context,
		entry *models.AuditLog,
	) error
}
