package booking

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/audit"
	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/notify"
)

// ======================================================
// FAKE REPOSITORY
// ======================================================
// Implementação em memória com a mesma semântica de not-found da
// implementação GORM, para testar os use cases sem banco.

type fakeRepo struct {
	locations    map[uint]*models.Location
	staff        map[uint]*models.Staff
	staffLoc     map[[2]uint]bool
	services     map[uint]*models.Service
	customers    map[uint]*models.Customer
	consents     []*models.Consent
	permissions  []*models.BookingPermission
	appointments map[uint]*models.Appointment
	tokens       []*models.AccessToken
	attachments  []*models.Attachment
	workingHours map[[2]uint]*models.WorkingHours
	blockers     []*models.TimeBlocker
	audits       []*models.AuditLog

	// quando setado, FindCustomerByPhone devolve este erro
	findCustomerErr error

	lastID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		locations:    map[uint]*models.Location{},
		staff:        map[uint]*models.Staff{},
		staffLoc:     map[[2]uint]bool{},
		services:     map[uint]*models.Service{},
		customers:    map[uint]*models.Customer{},
		appointments: map[uint]*models.Appointment{},
		workingHours: map[[2]uint]*models.WorkingHours{},
	}
}

func (r *fakeRepo) nextID() uint {
	r.lastID++
	return r.lastID
}

// -------- seeds --------

func (r *fakeRepo) addLocation(loc models.Location) *models.Location {
	if loc.ID == 0 {
		loc.ID = r.nextID()
	}
	r.locations[loc.ID] = &loc
	return &loc
}

func (r *fakeRepo) addStaff(s models.Staff, locationIDs ...uint) *models.Staff {
	if s.ID == 0 {
		s.ID = r.nextID()
	}
	r.staff[s.ID] = &s
	for _, locID := range locationIDs {
		r.staffLoc[[2]uint{s.ID, locID}] = true
	}
	return &s
}

func (r *fakeRepo) addService(svc models.Service) *models.Service {
	if svc.ID == 0 {
		svc.ID = r.nextID()
	}
	r.services[svc.ID] = &svc
	return &svc
}

func (r *fakeRepo) addCustomer(c models.Customer) *models.Customer {
	if c.ID == 0 {
		c.ID = r.nextID()
	}
	r.customers[c.ID] = &c
	return &c
}

func (r *fakeRepo) addWorkingHours(wh models.WorkingHours) {
	if wh.ID == 0 {
		wh.ID = r.nextID()
	}
	r.workingHours[[2]uint{wh.StaffID, uint(wh.Weekday)}] = &wh
}

func (r *fakeRepo) auditActions() []string {
	out := make([]string, 0, len(r.audits))
	for _, a := range r.audits {
		out = append(out, a.Action)
	}
	return out
}

// -------- Repository --------

func (r *fakeRepo) InTx(
	ctx context.Context,
	timeout time.Duration,
	fn func(tx domain.Repository) error,
) error {
	return fn(r)
}

func (r *fakeRepo) GetLocationByID(ctx context.Context, id uint) (*models.Location, error) {
	loc, ok := r.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return loc, nil
}

func (r *fakeRepo) GetLocationBySlug(ctx context.Context, slug string) (*models.Location, error) {
	for _, loc := range r.locations {
		if loc.Slug == slug {
			return loc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetStaffByID(ctx context.Context, id uint) (*models.Staff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeRepo) StaffWorksAt(ctx context.Context, staffID, locationID uint) (bool, error) {
	return r.staffLoc[[2]uint{staffID, locationID}], nil
}

func (r *fakeRepo) ListStaffForLocation(ctx context.Context, locationID uint) ([]models.Staff, error) {
	var out []models.Staff
	for _, s := range r.staff {
		if s.Active && r.staffLoc[[2]uint{s.ID, locationID}] {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListServicesByIDs(ctx context.Context, locationID uint, ids []uint) ([]models.Service, error) {
	var out []models.Service
	for _, id := range ids {
		svc, ok := r.services[id]
		if !ok || svc.LocationID != locationID {
			continue
		}
		out = append(out, *svc)
	}
	return out, nil
}

func (r *fakeRepo) GetCustomer(ctx context.Context, locationID, customerID uint) (*models.Customer, error) {
	c, ok := r.customers[customerID]
	if !ok || c.LocationID != locationID {
		return nil, httperr.ErrTenant("customer_not_in_location")
	}
	return c, nil
}

func (r *fakeRepo) FindCustomerByPhone(ctx context.Context, locationID uint, phone string) (*models.Customer, error) {
	if r.findCustomerErr != nil {
		return nil, r.findCustomerErr
	}
	for _, c := range r.customers {
		if c.LocationID == locationID && c.Phone == phone {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.ID = r.nextID()
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeRepo) FindConsent(
	ctx context.Context,
	customerID, locationID uint,
	consentType, scope string,
) (*models.Consent, error) {
	for _, c := range r.consents {
		if c.CustomerID == customerID && c.LocationID == locationID &&
			c.Type == consentType && c.Scope == scope {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) CreateConsent(ctx context.Context, consent *models.Consent) error {
	consent.ID = r.nextID()
	r.consents = append(r.consents, consent)
	return nil
}

func (r *fakeRepo) UpdateConsent(ctx context.Context, consent *models.Consent) error {
	for i, c := range r.consents {
		if c.ID == consent.ID {
			r.consents[i] = consent
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListBookingPermissions(ctx context.Context, customerID, locationID uint) ([]models.BookingPermission, error) {
	var out []models.BookingPermission
	for _, p := range r.permissions {
		if p.CustomerID == customerID && p.LocationID == locationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateBookingPermission(ctx context.Context, perm *models.BookingPermission) error {
	perm.ID = r.nextID()
	r.permissions = append(r.permissions, perm)
	return nil
}

func (r *fakeRepo) AssertNoTimeConflict(ctx context.Context, staffID uint, start, end time.Time) error {
	items, err := r.ListItemsForStaffRange(ctx, staffID, start, end)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return httperr.ErrConflict("time_conflict")
	}
	return nil
}

func (r *fakeRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	ap.ID = r.nextID()
	for i := range ap.Items {
		ap.Items[i].ID = r.nextID()
		ap.Items[i].AppointmentID = ap.ID
	}
	r.appointments[ap.ID] = ap
	return nil
}

func (r *fakeRepo) GetAppointment(ctx context.Context, locationID, id uint) (*models.Appointment, error) {
	ap, ok := r.appointments[id]
	if !ok || ap.LocationID != locationID {
		return nil, gorm.ErrRecordNotFound
	}
	return ap, nil
}

func (r *fakeRepo) GetAppointmentByID(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, ok := r.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ap, nil
}

func (r *fakeRepo) GetAppointmentItem(ctx context.Context, id uint) (*models.AppointmentItem, error) {
	for _, ap := range r.appointments {
		for _, item := range ap.Items {
			if item.ID == id {
				copied := item
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	if _, ok := r.appointments[ap.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.appointments[ap.ID] = ap
	return nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(
	ctx context.Context,
	locationID uint,
	start, end time.Time,
) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.LocationID != locationID {
			continue
		}
		if ap.StartTime.Before(start) || !ap.StartTime.Before(end) {
			continue
		}
		out = append(out, *ap)
	}
	return out, nil
}

func (r *fakeRepo) CreateAccessToken(ctx context.Context, token *models.AccessToken) error {
	token.ID = r.nextID()
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeRepo) GetAccessToken(ctx context.Context, value string) (*models.AccessToken, error) {
	for _, t := range r.tokens {
		if t.Token == value || t.ShortCode == value {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreateAttachment(ctx context.Context, att *models.Attachment) error {
	att.ID = r.nextID()
	r.attachments = append(r.attachments, att)
	return nil
}

func (r *fakeRepo) GetWorkingHours(ctx context.Context, staffID uint, weekday int) (*models.WorkingHours, error) {
	wh, ok := r.workingHours[[2]uint{staffID, uint(weekday)}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return wh, nil
}

func (r *fakeRepo) ListItemsForStaffRange(
	ctx context.Context,
	staffID uint,
	start, end time.Time,
) ([]models.AppointmentItem, error) {
	var out []models.AppointmentItem
	for _, ap := range r.appointments {
		status := domain.Status(ap.Status)
		if status != domain.StatusPending && status != domain.StatusConfirmed {
			continue
		}
		for _, item := range ap.Items {
			if item.StaffID == nil || *item.StaffID != staffID {
				continue
			}
			if item.StartTime.Before(end) && item.EndTime.After(start) {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) ListTimeBlockers(
	ctx context.Context,
	staffID uint,
	start, end time.Time,
) ([]models.TimeBlocker, error) {
	var out []models.TimeBlocker
	for _, b := range r.blockers {
		if b.StaffID == staffID && b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = r.nextID()
	r.audits = append(r.audits, entry)
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// FAKE COLLABORATORS
// ======================================================

type fakeLocker struct {
	err  error
	held bool

	acquired int
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	l.acquired++
	return "test-token", true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key, token string) {
	l.released++
}

// fakeVerifier aceita o PIN cadastrado por profissional.
type fakeVerifier map[uint]string

func (v fakeVerifier) Verify(ctx context.Context, pin string, staffID uint) bool {
	return pin != "" && v[staffID] == pin
}

type memHoldStore struct {
	holds   map[string]hold.Hold
	removed []string
	listErr error
}

func newMemHoldStore() *memHoldStore {
	return &memHoldStore{holds: map[string]hold.Hold{}}
}

func (s *memHoldStore) Store(ctx context.Context, h hold.Hold, ttl time.Duration) error {
	h.ExpiresAt = time.Now().Add(ttl)
	s.holds[h.Key()] = h
	return nil
}

func (s *memHoldStore) List(ctx context.Context, locationID uint) ([]hold.Hold, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []hold.Hold
	for _, h := range s.holds {
		if h.LocationID == locationID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memHoldStore) Remove(ctx context.Context, key string) error {
	delete(s.holds, key)
	s.removed = append(s.removed, key)
	return nil
}

type fakeAttachStore struct {
	objects map[string][]byte
}

func newFakeAttachStore() *fakeAttachStore {
	return &fakeAttachStore{objects: map[string][]byte{}}
}

func (s *fakeAttachStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	s.objects[key] = data
	return nil
}

type syncEvent struct {
	locationID uint
	action     string
	ids        []uint
}

type fakeSyncBus struct {
	events []syncEvent
}

func (b *fakeSyncBus) Publish(locationID uint, action string, appointmentIDs []uint) {
	b.events = append(b.events, syncEvent{locationID, action, appointmentIDs})
}

type nullSink struct{}

func (nullSink) Log(e audit.Entry) error { return nil }

// -------- notify stubs --------

type stubRenderer struct{}

func (stubRenderer) RenderConfirmation(
	ap *models.Appointment,
	customer *models.Customer,
	location *models.Location,
	manageURL string,
) (notify.Message, error) {
	return notify.Message{Subject: "confirmacao", Text: manageURL}, nil
}

func (stubRenderer) RenderVIPGrant(
	customer *models.Customer,
	location *models.Location,
	staffNames []string,
) (notify.Message, error) {
	return notify.Message{Subject: "vip", Text: "acesso liberado"}, nil
}

func (stubRenderer) RenderWhatsAppTemplate(
	ap *models.Appointment,
	customer *models.Customer,
	location *models.Location,
) (string, []string) {
	return "booking_confirmation", []string{customer.Name}
}

func (stubRenderer) RenderWhatsAppFallback(
	ap *models.Appointment,
	customer *models.Customer,
	location *models.Location,
) string {
	return "confirmado"
}

func (stubRenderer) RenderSMS(
	ap *models.Appointment,
	location *models.Location,
	smsURL string,
) string {
	return "confirmado " + smsURL
}

type recordMailer struct {
	sent []string // destinatários, na ordem
}

func (m *recordMailer) Send(ctx context.Context, to string, msg notify.Message) error {
	m.sent = append(m.sent, to)
	return nil
}

type recordSMS struct {
	sent []string
}

func (s *recordSMS) Send(ctx context.Context, phone, text string) error {
	s.sent = append(s.sent, phone)
	return nil
}

type recordWhatsApp struct {
	templates []string
	texts     []string
}

func (w *recordWhatsApp) SendTemplate(ctx context.Context, phone, template string, params []string) error {
	w.templates = append(w.templates, phone)
	return nil
}

func (w *recordWhatsApp) SendText(ctx context.Context, phone, text string) error {
	w.texts = append(w.texts, phone)
	return nil
}

type noopReminders struct {
	scheduled []uint
}

func (r *noopReminders) Schedule(ctx context.Context, ap *models.Appointment) {
	r.scheduled = append(r.scheduled, ap.ID)
}
