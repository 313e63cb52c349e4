package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

// InTx abre uma transação com timeout explícito. O Repository passado
// para fn opera sobre a transação, então audit e escritas de domínio
// commitam (ou revertem) juntos.
func (r *BookingGormRepository) InTx(
	ctx context.Context,
	timeout time.Duration,
	fn func(tx domain.Repository) error,
) error {

	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Location / Staff
// --------------------------------------------------

func (r *BookingGormRepository) GetLocationByID(
	ctx context.Context,
	id uint,
) (*models.Location, error) {

	var loc models.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *BookingGormRepository) GetLocationBySlug(
	ctx context.Context,
	slug string,
) (*models.Location, error) {

	var loc models.Location
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *BookingGormRepository) GetStaffByID(
	ctx context.Context,
	id uint,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).First(&staff, id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *BookingGormRepository) StaffWorksAt(
	ctx context.Context,
	staffID uint,
	locationID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StaffLocation{}).
		Where("staff_id = ? AND location_id = ?", staffID, locationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingGormRepository) ListStaffForLocation(
	ctx context.Context,
	locationID uint,
) ([]models.Staff, error) {

	var staff []models.Staff
	err := r.db.WithContext(ctx).
		Joins("JOIN staff_locations sl ON sl.staff_id = staff.id").
		Where("sl.location_id = ? AND staff.active = true", locationID).
		Order("staff.id ASC").
		Find(&staff).Error

	if err != nil {
		return nil, err
	}
	return staff, nil
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *BookingGormRepository) ListServicesByIDs(
	ctx context.Context,
	locationID uint,
	ids []uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("location_id = ? AND id IN ?", locationID, ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *BookingGormRepository) GetCustomer(
	ctx context.Context,
	locationID uint,
	customerID uint,
) (*models.Customer, error) {

	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? AND location_id = ?", customerID, locationID).
		First(&customer).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrTenant("customer_not_in_location")
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *BookingGormRepository) FindCustomerByPhone(
	ctx context.Context,
	locationID uint,
	phone string,
) (*models.Customer, error) {

	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("location_id = ? AND phone = ?", locationID, phone).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *BookingGormRepository) CreateCustomer(
	ctx context.Context,
	customer *models.Customer,
) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// --------------------------------------------------
// Consent
// --------------------------------------------------

func (r *BookingGormRepository) FindConsent(
	ctx context.Context,
	customerID uint,
	locationID uint,
	consentType string,
	scope string,
) (*models.Consent, error) {

	var consent models.Consent
	err := r.db.WithContext(ctx).
		Where(
			"customer_id = ? AND location_id = ? AND type = ? AND scope = ?",
			customerID, locationID, consentType, scope,
		).
		First(&consent).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &consent, nil
}

func (r *BookingGormRepository) CreateConsent(
	ctx context.Context,
	consent *models.Consent,
) error {
	return r.db.WithContext(ctx).Create(consent).Error
}

func (r *BookingGormRepository) UpdateConsent(
	ctx context.Context,
	consent *models.Consent,
) error {
	return r.db.WithContext(ctx).Save(consent).Error
}

// --------------------------------------------------
// VIP booking permission
// --------------------------------------------------

func (r *BookingGormRepository) ListBookingPermissions(
	ctx context.Context,
	customerID uint,
	locationID uint,
) ([]models.BookingPermission, error) {

	var perms []models.BookingPermission
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND location_id = ?", customerID, locationID).
		Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *BookingGormRepository) CreateBookingPermission(
	ctx context.Context,
	perm *models.BookingPermission,
) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

// Itens de agendamentos vivos contam como ocupação; cancelado e
// no-show liberam o horário.
func (r *BookingGormRepository) AssertNoTimeConflict(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) error {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AppointmentItem{}).
		Joins("JOIN appointments a ON a.id = appointment_items.appointment_id").
		Where(
			"appointment_items.staff_id = ? AND a.status IN ? AND appointment_items.start_time < ? AND appointment_items.end_time > ?",
			staffID,
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
			end,
			start,
		).
		Count(&count).Error

	if err != nil {
		return err
	}
	if count > 0 {
		return httperr.ErrConflict("time_conflict")
	}
	return nil
}

func (r *BookingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *BookingGormRepository) GetAppointment(
	ctx context.Context,
	locationID uint,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ? AND location_id = ?", id, locationID).
		First(&ap).Error

	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) GetAppointmentByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&ap, id).Error

	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) GetAppointmentItem(
	ctx context.Context,
	id uint,
) (*models.AppointmentItem, error) {

	var item models.AppointmentItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *BookingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(ap).Error
}

func (r *BookingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	locationID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Where(
			"location_id = ? AND start_time >= ? AND start_time < ?",
			locationID, start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Access token / attachment
// --------------------------------------------------

func (r *BookingGormRepository) CreateAccessToken(
	ctx context.Context,
	token *models.AccessToken,
) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *BookingGormRepository) GetAccessToken(
	ctx context.Context,
	value string,
) (*models.AccessToken, error) {

	var token models.AccessToken
	err := r.db.WithContext(ctx).
		Where("token = ? OR short_code = ?", value, value).
		First(&token).Error

	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *BookingGormRepository) CreateAttachment(
	ctx context.Context,
	att *models.Attachment,
) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	staffID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND weekday = ?", staffID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

// Itens de agendamentos vivos (PENDING/CONFIRMED) que tocam a janela.
func (r *BookingGormRepository) ListItemsForStaffRange(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]models.AppointmentItem, error) {

	var items []models.AppointmentItem
	err := r.db.WithContext(ctx).
		Joins("JOIN appointments a ON a.id = appointment_items.appointment_id").
		Where(
			"appointment_items.staff_id = ? AND a.status IN ? AND appointment_items.start_time < ? AND appointment_items.end_time > ?",
			staffID,
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
			end,
			start,
		).
		Order("appointment_items.start_time ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BookingGormRepository) ListTimeBlockers(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]models.TimeBlocker, error) {

	var blockers []models.TimeBlocker
	err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND start_time < ? AND end_time > ?",
			staffID, end, start,
		).
		Find(&blockers).Error

	if err != nil {
		return nil, err
	}
	return blockers, nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (r *BookingGormRepository) CreateAuditLog(
	ctx context.Context,
	entry *models.AuditLog,
) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
