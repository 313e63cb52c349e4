package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/attachments"
	"github.com/salonkit/salon-scheduler/internal/audit"
	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/identity"
	"github.com/salonkit/salon-scheduler/internal/locking"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/notify"
	"github.com/salonkit/salon-scheduler/internal/policy"
	"github.com/salonkit/salon-scheduler/internal/syncbus"
	"github.com/salonkit/salon-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type ServiceRequest struct {
	ServiceID uint

	// Override explícito de profissional; vazio = staff principal.
	// Mais de um staff gera um item por staff.
	StaffIDs []uint

	DurationMin *int
	Price       *float64
}

type CustomerRequest struct {
	// Existente (por id) ou novo (por dados de contato)
	CustomerID *uint

	Name  string
	Phone string
	Email string
}

type AttachmentUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type NotificationFlags struct {
	Email bool
	SMS   bool

	// nil = não informado; false explícito revoga consentimento ativo
	WhatsAppOptIn *bool
}

type Actor struct {
	StaffID uint
	PIN     string
}

type CreateBookingInput struct {
	LocationID uint
	StaffID    uint // staff principal dos itens sem override

	Start time.Time
	End   time.Time

	Services []ServiceRequest
	Customer CustomerRequest

	Notifications NotificationFlags
	Recurrence    *domain.Recurrence
	VIPStaffIDs   []uint
	Attachments   []AttachmentUpload

	InternalNote string

	// Hold do checkout a remover no commit (opcional)
	HoldKey string

	// Actor zerado = canal online (sem PIN); sem ator não há
	// concessão de VIP nem staff no audit.
	Actor Actor
}

func (in CreateBookingInput) isOnline() bool {
	return in.Actor.StaffID == 0
}

func (in CreateBookingInput) actorID() *uint {
	if in.isOnline() {
		return nil
	}
	id := in.Actor.StaffID
	return &id
}

type CreateBookingResult struct {
	AppointmentIDs    []uint   `json:"appointment_ids"`
	ConfirmationCodes []string `json:"confirmation_codes"`
	ManageURLs        []string `json:"manage_urls"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	locker   locking.Locker
	verifier identity.ActorVerifier
	policy   policy.Loader

	holds       hold.Store
	attachStore attachments.Store
	notifier    *notify.Dispatcher
	reminders   notify.ReminderScheduler
	sync        syncbus.Publisher
	audit       *audit.Dispatcher

	lockTTL time.Duration
	baseURL string

	now func() time.Time
}

func NewCreateBooking(
	repo domain.Repository,
	locker locking.Locker,
	verifier identity.ActorVerifier,
	policyLoader policy.Loader,
	holds hold.Store,
	attachStore attachments.Store,
	notifier *notify.Dispatcher,
	reminders notify.ReminderScheduler,
	syncPublisher syncbus.Publisher,
	auditDispatcher *audit.Dispatcher,
	lockTTL time.Duration,
	baseURL string,
) *CreateBooking {
	return &CreateBooking{
		repo:        repo,
		locker:      locker,
		verifier:    verifier,
		policy:      policyLoader,
		holds:       holds,
		attachStore: attachStore,
		notifier:    notifier,
		reminders:   reminders,
		sync:        syncPublisher,
		audit:       auditDispatcher,
		lockTTL:     lockTTL,
		baseURL:     baseURL,
		now:         time.Now,
	}
}

// occurrenceResult carrega o que o pós-commit precisa por ocorrência.
type occurrenceResult struct {
	appointment *models.Appointment
	manageURL   string
	smsURL      string
}

// EXECUTE
//
// 1️⃣ valida tudo antes de qualquer efeito colateral
// 2️⃣ expande a recorrência
// 3️⃣ adquire o lock do local (best-effort)
// 4️⃣ UMA transação cobrindo todas as ocorrências
// 5️⃣ pós-commit: notificações, lembretes, sync — nunca revertem nada
func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingResult, error) {

	prefs, services, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	occurrences, err := domain.Expand(in.Start, in.End, in.Recurrence)
	if err != nil {
		return nil, err
	}

	if err := uc.checkBookingWindow(prefs, occurrences); err != nil {
		return nil, err
	}

	lockKey := locking.BookingKey(in.LocationID)
	token, acquired, lockErr := uc.locker.Acquire(ctx, lockKey, uc.lockTTL)
	if lockErr != nil {
		// backend de lock fora: seguimos sem exclusão mútua.
		// Disponibilidade vale mais que a garantia aqui, mas o
		// bypass fica registrado.
		log.Printf("lock backend unavailable for location %d, proceeding without lock: %v", in.LocationID, lockErr)
		uc.audit.Dispatch(audit.Entry{
			LocationID: in.LocationID,
			StaffID:    in.actorID(),
			Action:     "booking_lock_bypassed",
			Entity:     "location",
			EntityID:   &in.LocationID,
			Metadata:   map[string]any{"error": lockErr.Error()},
		})
	} else if !acquired {
		return nil, httperr.ErrConflict("booking_in_progress")
	} else {
		defer uc.locker.Release(ctx, lockKey, token)
	}

	var (
		results  []occurrenceResult
		customer *models.Customer
		vipNames []string
	)

	txErr := uc.repo.InTx(ctx, txTimeout(len(occurrences)), func(tx domain.Repository) error {
		var err error

		customer, err = uc.resolveCustomer(ctx, tx, in)
		if err != nil {
			return err
		}

		if in.isOnline() {
			if err := uc.checkOnlineEligibility(ctx, tx, in, customer, services); err != nil {
				return err
			}
		}

		if err := uc.captureConsents(ctx, tx, in, customer); err != nil {
			return err
		}

		vipNames, err = uc.grantVIPAccess(ctx, tx, in, customer)
		if err != nil {
			return err
		}

		seriesID := ""
		if in.Recurrence != nil {
			seriesID = uuid.NewString()
		}

		results = make([]occurrenceResult, 0, len(occurrences))
		for _, occ := range occurrences {
			res, err := uc.createOccurrence(ctx, tx, in, prefs, services, customer, occ, occurrences, seriesID)
			if err != nil {
				return err
			}
			results = append(results, res)
		}

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	uc.afterCommit(in, customer, vipNames, results)

	out := &CreateBookingResult{}
	for _, res := range results {
		out.AppointmentIDs = append(out.AppointmentIDs, res.appointment.ID)
		out.ConfirmationCodes = append(out.ConfirmationCodes, res.appointment.ConfirmationCode)
		out.ManageURLs = append(out.ManageURLs, res.manageURL)
	}

	return out, nil
}

// checkBookingWindow aplica a janela de antecedência do local a cada
// ocorrência: nada antes de now+minAdvance, nada além de
// now+maxAdvance (zero = sem teto).
func (uc *CreateBooking) checkBookingWindow(
	prefs policy.Preferences,
	occurrences []domain.Occurrence,
) error {

	now := uc.now()
	minBound := now.Add(time.Duration(prefs.MinAdvanceMinutes) * time.Minute)

	var maxBound time.Time
	if prefs.MaxAdvanceMinutes > 0 {
		maxBound = now.Add(time.Duration(prefs.MaxAdvanceMinutes) * time.Minute)
	}

	for _, occ := range occurrences {
		if occ.Start.Before(minBound) {
			return httperr.ErrBusiness("too_soon")
		}
		if !maxBound.IsZero() && occ.Start.After(maxBound) {
			return httperr.ErrBusiness("too_far_ahead")
		}
	}
	return nil
}

// txTimeout escala com o número de ocorrências, com teto: séries longas
// não podem nem morrer num timeout fixo nem segurar a conexão para sempre.
func txTimeout(occurrences int) time.Duration {
	timeout := 5*time.Second + time.Duration(occurrences)*2*time.Second
	if timeout > 30*time.Second {
		timeout = 30 * time.Second
	}
	return timeout
}

// --------------------------------------------------
// Validation (antes de qualquer efeito)
// --------------------------------------------------

func (uc *CreateBooking) validate(
	ctx context.Context,
	in CreateBookingInput,
) (policy.Preferences, []models.Service, error) {

	var prefs policy.Preferences

	if !in.End.After(in.Start) {
		return prefs, nil, httperr.ErrBusiness("invalid_time_range")
	}

	if in.isOnline() {
		if len(in.VIPStaffIDs) > 0 {
			return prefs, nil, httperr.ErrAuthorization("vip_requires_admin")
		}
	} else {
		if !uc.verifier.Verify(ctx, in.Actor.PIN, in.Actor.StaffID) {
			return prefs, nil, httperr.ErrAuthorization("invalid_pin")
		}

		actorAtLocation, err := uc.repo.StaffWorksAt(ctx, in.Actor.StaffID, in.LocationID)
		if err != nil {
			return prefs, nil, err
		}
		if !actorAtLocation {
			return prefs, nil, httperr.ErrTenant("actor_not_in_location")
		}
	}

	var err error
	prefs, err = uc.policy.Load(ctx, in.LocationID)
	if err != nil {
		return prefs, nil, err
	}

	if len(in.Services) == 0 {
		return prefs, nil, httperr.ErrBusiness("no_services")
	}
	if len(in.Services) > prefs.ServicesPerBooking {
		return prefs, nil, httperr.ErrBusiness("too_many_services")
	}

	ids := make([]uint, 0, len(in.Services))
	for _, sr := range in.Services {
		ids = append(ids, sr.ServiceID)
	}

	services, err := uc.repo.ListServicesByIDs(ctx, in.LocationID, ids)
	if err != nil {
		return prefs, nil, err
	}
	if len(services) != len(ids) {
		return prefs, nil, httperr.ErrBusiness("service_not_found")
	}
	for _, svc := range services {
		if !svc.Active {
			return prefs, nil, httperr.ErrBusiness("service_inactive")
		}
	}

	for _, staffID := range uc.allStaffTargets(in) {
		ok, err := uc.repo.StaffWorksAt(ctx, staffID, in.LocationID)
		if err != nil {
			return prefs, nil, err
		}
		if !ok {
			return prefs, nil, httperr.ErrTenant("staff_not_in_location")
		}
	}

	for _, att := range in.Attachments {
		if err := validators.ValidateAttachment(att.ContentType, int64(len(att.Data))); err != nil {
			return prefs, nil, err
		}
	}

	return prefs, services, nil
}

func (uc *CreateBooking) allStaffTargets(in CreateBookingInput) []uint {
	seen := map[uint]bool{in.StaffID: true}
	targets := []uint{in.StaffID}

	for _, sr := range in.Services {
		for _, id := range sr.StaffIDs {
			if !seen[id] {
				seen[id] = true
				targets = append(targets, id)
			}
		}
	}
	for _, id := range in.VIPStaffIDs {
		if !seen[id] {
			seen[id] = true
			targets = append(targets, id)
		}
	}

	return targets
}

// checkOnlineEligibility garante que o canal online só alcança o que
// a vitrine expõe: serviço agendável online e profissional público —
// ou liberado por permissão VIP do cliente.
func (uc *CreateBooking) checkOnlineEligibility(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	customer *models.Customer,
	services []models.Service,
) error {

	for _, svc := range services {
		if !svc.Metadata.OnlineBookable {
			return httperr.ErrBusiness("service_not_bookable_online")
		}
	}

	var vip map[uint]bool

	for _, staffID := range uc.allStaffTargets(in) {
		staff, err := tx.GetStaffByID(ctx, staffID)
		if err != nil {
			return err
		}
		if staff.OnlineBookable {
			continue
		}

		if vip == nil {
			perms, err := tx.ListBookingPermissions(ctx, customer.ID, in.LocationID)
			if err != nil {
				return err
			}
			vip = make(map[uint]bool, len(perms))
			for _, p := range perms {
				vip[p.StaffID] = true
			}
		}

		if !vip[staffID] {
			return httperr.ErrAuthorization("staff_not_bookable_online")
		}
	}

	return nil
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (uc *CreateBooking) resolveCustomer(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
) (*models.Customer, error) {

	if in.Customer.CustomerID != nil {
		return tx.GetCustomer(ctx, in.LocationID, *in.Customer.CustomerID)
	}

	if in.Customer.Name == "" || in.Customer.Phone == "" {
		return nil, httperr.ErrBusiness("missing_customer_data")
	}

	existing, err := tx.FindCustomerByPhone(ctx, in.LocationID, in.Customer.Phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		// erro transiente não pode virar cliente duplicado
		return nil, err
	}

	customer := &models.Customer{
		LocationID: in.LocationID,
		Name:       in.Customer.Name,
		Phone:      in.Customer.Phone,
		Email:      in.Customer.Email,
	}

	if err := tx.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// --------------------------------------------------
// Consent
// --------------------------------------------------

// captureConsents grava/atualiza o consentimento por canal pedido.
// Grant ativo existente fica como está (só backfill de method ausente);
// inexistente vira grant novo; opt-out explícito de WhatsApp revoga o
// grant ativo. Cada mutação ganha uma entrada de audit na mesma
// transação.
func (uc *CreateBooking) captureConsents(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	customer *models.Customer,
) error {

	if in.Notifications.Email {
		if err := uc.captureConsent(ctx, tx, in, customer, models.ConsentTypeEmail); err != nil {
			return err
		}
	}
	if in.Notifications.SMS {
		if err := uc.captureConsent(ctx, tx, in, customer, models.ConsentTypeSMS); err != nil {
			return err
		}
	}

	if in.Notifications.WhatsAppOptIn != nil {
		if *in.Notifications.WhatsAppOptIn {
			return uc.captureConsent(ctx, tx, in, customer, models.ConsentTypeWhatsApp)
		}
		return uc.revokeConsent(ctx, tx, in, customer, models.ConsentTypeWhatsApp)
	}

	return nil
}

func (uc *CreateBooking) captureConsent(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	customer *models.Customer,
	consentType string,
) error {

	existing, err := tx.FindConsent(
		ctx, customer.ID, in.LocationID, consentType, models.ConsentScopeNotifications,
	)
	if err != nil {
		return err
	}

	now := uc.now()

	if existing != nil && existing.IsActiveGrant() {
		// idempotente: só backfill de proveniência ausente
		if existing.Metadata.Method == "" {
			existing.Metadata.Method = "booking"
			if err := tx.UpdateConsent(ctx, existing); err != nil {
				return err
			}
			return uc.auditConsent(ctx, tx, in, customer, "consent_updated", existing)
		}
		return nil
	}

	if existing != nil {
		// registro revogado: reativa in-place, nunca duplica por escopo
		existing.Granted = true
		existing.GrantedAt = &now
		existing.RevokedAt = nil
		existing.Metadata.Method = "booking"
		if err := tx.UpdateConsent(ctx, existing); err != nil {
			return err
		}
		return uc.auditConsent(ctx, tx, in, customer, "consent_granted", existing)
	}

	consent := &models.Consent{
		CustomerID: customer.ID,
		LocationID: in.LocationID,
		Type:       consentType,
		Scope:      models.ConsentScopeNotifications,
		Granted:    true,
		GrantedAt:  &now,
		Metadata:   models.ConsentMeta{Method: "booking"},
	}

	if err := tx.CreateConsent(ctx, consent); err != nil {
		return err
	}
	return uc.auditConsent(ctx, tx, in, customer, "consent_granted", consent)
}

func (uc *CreateBooking) revokeConsent(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	customer *models.Customer,
	consentType string,
) error {

	existing, err := tx.FindConsent(
		ctx, customer.ID, in.LocationID, consentType, models.ConsentScopeNotifications,
	)
	if err != nil {
		return err
	}
	if existing == nil || !existing.IsActiveGrant() {
		return nil
	}

	now := uc.now()
	existing.Granted = false
	existing.RevokedAt = &now

	if err := tx.UpdateConsent(ctx, existing); err != nil {
		return err
	}
	return uc.auditConsent(ctx, tx, in, customer, "consent_revoked", existing)
}

func (uc *CreateBooking) auditConsent(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	customer *models.Customer,
	action string,
	consent *models.Consent,
) error {
	return tx.CreateAuditLog(ctx, &models.AuditLog{
		LocationID: in.LocationID,
		StaffID:    in.actorID(),
		Action:     action,
		Entity:     "consent",
		EntityID:   &consent.ID,
		After:      auditJSON(consent),
		Metadata:   auditJSON(map[string]any{"customer_id": customer.ID, "type": consent.Type}),
	})
}

// --------------------------------------------------
// VIP booking permission
// --------------------------------------------------

// grantVIPAccess libera o cliente para agendar com profissionais que
// não aparecem na vitrine pública. Só admins concedem; staff já
// público não precisa de VIP; grants existentes são pulados.
func (uc *CreateBooking) grantVIPAccess(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	customer *models.Customer,
) ([]string, error) {

	if len(in.VIPStaffIDs) == 0 {
		return nil, nil
	}

	actor, err := tx.GetStaffByID(ctx, in.Actor.StaffID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, httperr.ErrAuthorization("vip_requires_admin")
	}

	existing, err := tx.ListBookingPermissions(ctx, customer.ID, in.LocationID)
	if err != nil {
		return nil, err
	}
	granted := make(map[uint]bool, len(existing))
	for _, p := range existing {
		granted[p.StaffID] = true
	}

	var newNames []string
	for _, staffID := range in.VIPStaffIDs {
		staff, err := tx.GetStaffByID(ctx, staffID)
		if err != nil {
			return nil, httperr.ErrBusiness("vip_staff_not_found")
		}

		// VIP só faz sentido para staff fora da vitrine
		if staff.OnlineBookable {
			continue
		}
		if granted[staffID] {
			continue
		}

		perm := &models.BookingPermission{
			CustomerID:  customer.ID,
			LocationID:  in.LocationID,
			StaffID:     staffID,
			GrantedByID: &in.Actor.StaffID,
		}
		if err := tx.CreateBookingPermission(ctx, perm); err != nil {
			return nil, err
		}

		if err := tx.CreateAuditLog(ctx, &models.AuditLog{
			LocationID: in.LocationID,
			StaffID:    &in.Actor.StaffID,
			Action:     "vip_permission_granted",
			Entity:     "booking_permission",
			EntityID:   &perm.ID,
			After:      auditJSON(perm),
		}); err != nil {
			return nil, err
		}

		newNames = append(newNames, staff.Name)
	}

	// o email de acesso VIP precisa de destino
	if len(newNames) > 0 && customer.Email == "" {
		return nil, httperr.ErrBusiness("vip_requires_customer_email")
	}

	return newNames, nil
}

// --------------------------------------------------
// Occurrence
// --------------------------------------------------

func (uc *CreateBooking) createOccurrence(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	prefs policy.Preferences,
	services []models.Service,
	customer *models.Customer,
	occ domain.Occurrence,
	all []domain.Occurrence,
	seriesID string,
) (occurrenceResult, error) {

	var res occurrenceResult

	code, err := domain.NewConfirmationCode()
	if err != nil {
		return res, err
	}

	byID := make(map[uint]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	var (
		items     []models.AppointmentItem
		total     float64
		staffSet  []uint
		staffSeen = map[uint]bool{}
		cursor    = occ.Start
	)

	for seq, sr := range in.Services {
		svc := byID[sr.ServiceID]

		duration := time.Duration(svc.DurationMin) * time.Minute
		if sr.DurationMin != nil {
			duration = time.Duration(*sr.DurationMin) * time.Minute
		}

		price := svc.Price
		if sr.Price != nil {
			price = *sr.Price
		}
		total += price

		targets := sr.StaffIDs
		if len(targets) == 0 {
			targets = []uint{in.StaffID}
		}

		itemEnd := cursor.Add(duration)
		for _, staffID := range targets {
			sid := staffID
			items = append(items, models.AppointmentItem{
				ServiceID:     svc.ID,
				StaffID:       &sid,
				Sequence:      seq,
				StartTime:     cursor,
				EndTime:       itemEnd,
				Price:         price,
				StepsSnapshot: models.StepsSnapshot(svc.Metadata.Steps),
			})
			if !staffSeen[staffID] {
				staffSeen[staffID] = true
				staffSet = append(staffSet, staffID)
			}
		}
		cursor = itemEnd
	}

	meta := models.AppointmentMeta{
		AssignedStaffIDs: staffSet,
		InternalNote:     in.InternalNote,
	}
	if in.Recurrence != nil {
		meta.Repeat = &models.RepeatDescriptor{
			SeriesID:  seriesID,
			Frequency: in.Recurrence.Frequency,
			Interval:  in.Recurrence.Interval,
			Until:     domain.Until(all),
			Index:     occ.Index,
		}
	}

	// o lock serializa requisições concorrentes; esta checagem barra a
	// segunda que chega depois da primeira commitar
	for _, item := range items {
		if item.StaffID == nil {
			continue
		}
		if err := tx.AssertNoTimeConflict(ctx, *item.StaffID, item.StartTime, item.EndTime); err != nil {
			return res, err
		}
	}

	ap := &models.Appointment{
		LocationID:       in.LocationID,
		CustomerID:       &customer.ID,
		ConfirmationCode: code,
		StartTime:        occ.Start,
		EndTime:          cursor,
		Status:           string(domain.InitialStatus()),
		PaymentStatus:    domain.PaymentUnpaid,
		TotalAmount:      total,
		Metadata:         meta,
		Items:            items,
	}

	if err := tx.CreateAppointment(ctx, ap); err != nil {
		return res, err
	}

	for _, att := range in.Attachments {
		key := attachments.ObjectKey(in.LocationID, ap.ID, att.FileName)
		if err := uc.attachStore.Put(ctx, key, att.ContentType, att.Data); err != nil {
			return res, err
		}
		if err := tx.CreateAttachment(ctx, &models.Attachment{
			AppointmentID: ap.ID,
			FileName:      att.FileName,
			ContentType:   att.ContentType,
			SizeBytes:     int64(len(att.Data)),
			StorageKey:    key,
		}); err != nil {
			return res, err
		}
	}

	token, err := uc.mintAccessToken(ctx, tx, ap, prefs)
	if err != nil {
		return res, err
	}

	if err := tx.CreateAuditLog(ctx, &models.AuditLog{
		LocationID: in.LocationID,
		StaffID:    in.actorID(),
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &ap.ID,
		After:      auditJSON(ap),
	}); err != nil {
		return res, err
	}

	res.appointment = ap
	res.manageURL = fmt.Sprintf("%s/m/%s", uc.baseURL, token.Token)
	res.smsURL = fmt.Sprintf("%s/s/%s", uc.baseURL, token.ShortCode)
	return res, nil
}

// mintAccessToken: a expiração é o mais restrito entre o início da
// ocorrência e o deadline de cancelamento do local.
func (uc *CreateBooking) mintAccessToken(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	prefs policy.Preferences,
) (*models.AccessToken, error) {

	value, err := domain.NewAccessTokenValue()
	if err != nil {
		return nil, err
	}
	short, err := domain.NewShortCode()
	if err != nil {
		return nil, err
	}

	expiresAt := ap.StartTime
	if prefs.CancellationDeadlineHours > 0 {
		deadline := ap.StartTime.Add(-time.Duration(prefs.CancellationDeadlineHours) * time.Hour)
		if deadline.Before(expiresAt) {
			expiresAt = deadline
		}
	}

	token := &models.AccessToken{
		AppointmentID: ap.ID,
		Token:         value,
		ShortCode:     short,
		ExpiresAt:     expiresAt,
	}

	if err := tx.CreateAccessToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// --------------------------------------------------
// Post-commit (best-effort, nunca falha o booking)
// --------------------------------------------------

func (uc *CreateBooking) afterCommit(
	in CreateBookingInput,
	customer *models.Customer,
	vipNames []string,
	results []occurrenceResult,
) {

	ctx := context.Background()

	// o hold do checkout já virou agendamento
	if in.HoldKey != "" {
		if err := uc.holds.Remove(ctx, in.HoldKey); err != nil {
			log.Printf("hold cleanup failed for %s: %v", in.HoldKey, err)
		}
	}

	location, err := uc.repo.GetLocationByID(ctx, in.LocationID)
	if err != nil {
		log.Printf("post-commit location load failed for %d: %v", in.LocationID, err)
		return
	}

	if len(vipNames) > 0 {
		uc.notifier.SendVIPGrant(ctx, customer, location, vipNames)
	}

	whatsAppOptIn := in.Notifications.WhatsAppOptIn != nil && *in.Notifications.WhatsAppOptIn

	ids := make([]uint, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.appointment.ID)

		uc.reminders.Schedule(ctx, res.appointment)

		uc.notifier.Dispatch(ctx, notify.DispatchInput{
			Appointment:    res.appointment,
			Customer:       customer,
			Location:       location,
			EmailRequested: in.Notifications.Email,
			SMSRequested:   in.Notifications.SMS,
			WhatsAppOptIn:  whatsAppOptIn,
			ManageURL:      res.manageURL,
			SMSURL:         res.smsURL,
		})
	}

	uc.sync.Publish(in.LocationID, syncbus.ActionCreated, ids)
}
