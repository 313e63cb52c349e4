package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/salonkit/salon-scheduler/internal/audit"
	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/notify"
	"github.com/salonkit/salon-scheduler/internal/policy"
)

// IDs fixos do cenário padrão.
const (
	locID         = uint(1)
	adminID       = uint(2)
	stylistID     = uint(3)
	vipArtistID   = uint(4)
	cutSvcID      = uint(10)
	colorSvcID    = uint(11)
	hiddenSvcID   = uint(12)
	customerID    = uint(100)
	noEmailCustID = uint(101)
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type bookingFixture struct {
	repo      *fakeRepo
	locker    *fakeLocker
	holds     *memHoldStore
	attach    *fakeAttachStore
	bus       *fakeSyncBus
	mailer    *recordMailer
	sms       *recordSMS
	wa        *recordWhatsApp
	reminders *noopReminders
	verifier  fakeVerifier

	uc *CreateBooking
}

func newBookingFixture() *bookingFixture {
	repo := newFakeRepo()

	repo.addLocation(models.Location{
		ID:                        locID,
		TenantID:                  1,
		Name:                      "Studio Luz",
		Slug:                      "studio-luz",
		Timezone:                  "UTC",
		MinAdvanceMinutes:         60,
		ServicesPerBooking:        3,
		CancellationDeadlineHours: 24,
		ManualConfirmationMode:    models.ManualConfirmationSMS,
		SMSEnabled:                true,
	})

	repo.addStaff(models.Staff{
		ID: adminID, Name: "Marta", Role: "admin",
		OnlineBookable: true, Active: true,
	}, locID)
	repo.addStaff(models.Staff{
		ID: stylistID, Name: "Bia", Role: "staff",
		OnlineBookable: true, Active: true,
	}, locID)
	repo.addStaff(models.Staff{
		ID: vipArtistID, Name: "Rafael", Role: "staff",
		OnlineBookable: false, Active: true,
	}, locID)

	repo.addService(models.Service{
		ID: cutSvcID, LocationID: locID, Name: "Corte",
		DurationMin: 45, Price: 80, Active: true,
		Metadata: models.ServiceMeta{OnlineBookable: true, AssignedStaffIDs: []uint{adminID, stylistID}},
	})
	repo.addService(models.Service{
		ID: colorSvcID, LocationID: locID, Name: "Coloração",
		DurationMin: 60, Price: 200, Active: true,
		Metadata: models.ServiceMeta{OnlineBookable: true, AssignedStaffIDs: []uint{stylistID}},
	})
	repo.addService(models.Service{
		ID: hiddenSvcID, LocationID: locID, Name: "Tratamento interno",
		DurationMin: 30, Price: 120, Active: true,
		Metadata: models.ServiceMeta{OnlineBookable: false, AssignedStaffIDs: []uint{stylistID}},
	})

	repo.addCustomer(models.Customer{
		ID: customerID, LocationID: locID,
		Name: "Ana", Phone: "11999990000", Email: "ana@example.com",
	})
	repo.addCustomer(models.Customer{
		ID: noEmailCustID, LocationID: locID,
		Name: "Carlos", Phone: "11988880000",
	})

	repo.lastID = 1000

	f := &bookingFixture{
		repo:      repo,
		locker:    &fakeLocker{},
		holds:     newMemHoldStore(),
		attach:    newFakeAttachStore(),
		bus:       &fakeSyncBus{},
		mailer:    &recordMailer{},
		sms:       &recordSMS{},
		wa:        &recordWhatsApp{},
		reminders: &noopReminders{},
	}

	f.verifier = fakeVerifier{adminID: "1234", stylistID: "5678"}
	notifier := notify.NewDispatcher(stubRenderer{}, f.mailer, f.sms, f.wa)

	f.uc = NewCreateBooking(
		repo,
		f.locker,
		f.verifier,
		policy.NewRepositoryLoader(repo),
		f.holds,
		f.attach,
		notifier,
		f.reminders,
		f.bus,
		audit.NewDispatcher(nullSink{}),
		5*time.Second,
		"https://agenda.example.com",
	)
	f.uc.now = func() time.Time { return fixedNow }

	return f
}

func baseInput() CreateBookingInput {
	cid := customerID
	return CreateBookingInput{
		LocationID: locID,
		StaffID:    stylistID,
		Start:      time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 5, 13, 45, 0, 0, time.UTC),
		Services:   []ServiceRequest{{ServiceID: cutSvcID}},
		Customer:   CustomerRequest{CustomerID: &cid},
		Actor:      Actor{StaffID: stylistID, PIN: "5678"},
	}
}

func TestCreateBookingSingle(t *testing.T) {
	f := newBookingFixture()

	out, err := f.uc.Execute(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.AppointmentIDs) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(out.AppointmentIDs))
	}
	if len(out.ConfirmationCodes) != 1 || len(out.ConfirmationCodes[0]) != 6 {
		t.Fatalf("expected one 6-char confirmation code, got %v", out.ConfirmationCodes)
	}

	ap := f.repo.appointments[out.AppointmentIDs[0]]
	if ap == nil {
		t.Fatal("appointment not persisted")
	}
	if ap.Status != string(domain.StatusConfirmed) {
		t.Fatalf("expected CONFIRMED, got %s", ap.Status)
	}
	if ap.TotalAmount != 80 {
		t.Fatalf("expected total 80, got %.2f", ap.TotalAmount)
	}
	if len(ap.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(ap.Items))
	}
	item := ap.Items[0]
	if item.StaffID == nil || *item.StaffID != stylistID {
		t.Fatalf("item staff mismatch: %v", item.StaffID)
	}
	if !item.EndTime.Equal(item.StartTime.Add(45 * time.Minute)) {
		t.Fatalf("item duration mismatch: %v → %v", item.StartTime, item.EndTime)
	}

	if len(f.bus.events) != 1 || f.bus.events[0].action != "created" {
		t.Fatalf("expected one created sync event, got %+v", f.bus.events)
	}
	if len(f.reminders.scheduled) != 1 {
		t.Fatalf("expected 1 reminder scheduled, got %d", len(f.reminders.scheduled))
	}
	if f.locker.acquired != 1 || f.locker.released != 1 {
		t.Fatalf("lock not acquired/released: %d/%d", f.locker.acquired, f.locker.released)
	}
}

func TestCreateBookingAccessTokenDeadline(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()

	if _, err := f.uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.tokens) != 1 {
		t.Fatalf("expected 1 access token, got %d", len(f.repo.tokens))
	}
	token := f.repo.tokens[0]

	// deadline de 24h antes do início é mais restrito que o início
	want := in.Start.Add(-24 * time.Hour)
	if !token.ExpiresAt.Equal(want) {
		t.Fatalf("expected token expiry %v, got %v", want, token.ExpiresAt)
	}
	if token.Token == "" || token.ShortCode == "" {
		t.Fatal("token values not minted")
	}
}

func TestCreateBookingMultiServicePricing(t *testing.T) {
	f := newBookingFixture()

	override := 150.0
	in := baseInput()
	in.End = in.Start.Add(105 * time.Minute)
	in.Services = []ServiceRequest{
		{ServiceID: cutSvcID},
		{ServiceID: colorSvcID, Price: &override},
	}

	out, err := f.uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ap := f.repo.appointments[out.AppointmentIDs[0]]
	if ap.TotalAmount != 230 {
		t.Fatalf("expected total 230, got %.2f", ap.TotalAmount)
	}
	if len(ap.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ap.Items))
	}

	// itens encadeados sem folga
	if !ap.Items[1].StartTime.Equal(ap.Items[0].EndTime) {
		t.Fatalf("items not back-to-back: %v vs %v", ap.Items[0].EndTime, ap.Items[1].StartTime)
	}
	if !ap.EndTime.Equal(in.Start.Add(105 * time.Minute)) {
		t.Fatalf("appointment end mismatch: %v", ap.EndTime)
	}
}

func TestCreateBookingValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateBookingInput)
		code   string
	}{
		{
			"end before start",
			func(in *CreateBookingInput) { in.End = in.Start.Add(-time.Hour) },
			"invalid_time_range",
		},
		{
			"wrong pin",
			func(in *CreateBookingInput) { in.Actor.PIN = "0000" },
			"invalid_pin",
		},
		{
			"no services",
			func(in *CreateBookingInput) { in.Services = nil },
			"no_services",
		},
		{
			"too many services",
			func(in *CreateBookingInput) {
				in.Services = []ServiceRequest{
					{ServiceID: cutSvcID}, {ServiceID: cutSvcID},
					{ServiceID: cutSvcID}, {ServiceID: cutSvcID},
				}
			},
			"too_many_services",
		},
		{
			"unknown service",
			func(in *CreateBookingInput) { in.Services = []ServiceRequest{{ServiceID: 999}} },
			"service_not_found",
		},
		{
			"staff from another location",
			func(in *CreateBookingInput) { in.StaffID = 999 },
			"staff_not_in_location",
		},
		{
			"missing customer data",
			func(in *CreateBookingInput) { in.Customer = CustomerRequest{Name: "Novo"} },
			"missing_customer_data",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture()
			in := baseInput()
			tc.mutate(&in)

			_, err := f.uc.Execute(context.Background(), in)
			if !httperr.IsBusiness(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestCreateBookingRejectsDoubleBooking(t *testing.T) {
	f := newBookingFixture()

	if _, err := f.uc.Execute(context.Background(), baseInput()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// mesmo profissional, mesma janela: a segunda requisição chega
	// depois da primeira commitar, então o lock sozinho não barra
	_, err := f.uc.Execute(context.Background(), baseInput())
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("expected time_conflict, got %v", err)
	}
	if kind, _ := httperr.KindOf(err); kind != httperr.KindConflict {
		t.Fatalf("expected conflict kind, got %v", kind)
	}
	if len(f.repo.appointments) != 1 {
		t.Fatalf("second appointment persisted: %d", len(f.repo.appointments))
	}

	// sobreposição parcial também conta
	in := baseInput()
	in.Start = in.Start.Add(30 * time.Minute)
	in.End = in.Start.Add(45 * time.Minute)
	if _, err := f.uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("expected time_conflict on partial overlap, got %v", err)
	}

	// outro profissional no mesmo horário é livre
	other := baseInput()
	other.StaffID = adminID
	other.Actor = Actor{StaffID: adminID, PIN: "1234"}
	if _, err := f.uc.Execute(context.Background(), other); err != nil {
		t.Fatalf("different staff same slot must book: %v", err)
	}
}

func TestCreateBookingCancelledSlotCanBeRebooked(t *testing.T) {
	f := newBookingFixture()

	out, err := f.uc.Execute(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	f.repo.appointments[out.AppointmentIDs[0]].Status = string(domain.StatusCancelled)

	if _, err := f.uc.Execute(context.Background(), baseInput()); err != nil {
		t.Fatalf("cancelled slot must be rebookable: %v", err)
	}
}

func TestCreateBookingEnforcesBookingWindow(t *testing.T) {
	f := newBookingFixture()

	// o local pede 60 minutos de antecedência
	in := baseInput()
	in.Start = fixedNow.Add(10 * time.Minute)
	in.End = in.Start.Add(45 * time.Minute)
	if _, err := f.uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "too_soon") {
		t.Fatalf("expected too_soon, got %v", err)
	}
	if len(f.repo.appointments) != 0 {
		t.Fatal("appointment persisted inside the minimum advance window")
	}

	// exatamente no limite passa
	in.Start = fixedNow.Add(60 * time.Minute)
	in.End = in.Start.Add(45 * time.Minute)
	if _, err := f.uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("booking at the exact minimum advance must pass: %v", err)
	}
}

func TestCreateBookingEnforcesMaxAdvance(t *testing.T) {
	f := newBookingFixture()
	f.repo.locations[locID].MaxAdvanceMinutes = 7 * 24 * 60

	in := baseInput()
	in.Start = fixedNow.AddDate(0, 0, 10)
	in.End = in.Start.Add(45 * time.Minute)
	if _, err := f.uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "too_far_ahead") {
		t.Fatalf("expected too_far_ahead, got %v", err)
	}

	// recorrência também respeita o teto: ocorrências além dele caem fora
	in = baseInput()
	in.Recurrence = &domain.Recurrence{
		Frequency: domain.FrequencyWeekly,
		Interval:  1,
		Count:     3,
	}
	if _, err := f.uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "too_far_ahead") {
		t.Fatalf("expected too_far_ahead for occurrence past the cap, got %v", err)
	}
	if len(f.repo.appointments) != 0 {
		t.Fatal("partial series persisted despite window rejection")
	}
}

func TestCreateBookingPhoneLookupErrorSurfaces(t *testing.T) {
	f := newBookingFixture()
	f.repo.findCustomerErr = errors.New("connection reset")

	in := baseInput()
	in.Customer = CustomerRequest{Name: "Ana", Phone: "11999990000"}

	_, err := f.uc.Execute(context.Background(), in)
	if err == nil || httperr.IsBusiness(err, "missing_customer_data") {
		t.Fatalf("expected transient error to surface, got %v", err)
	}

	// erro de consulta não pode virar cliente duplicado
	if len(f.repo.customers) != 2 {
		t.Fatalf("expected no new customer, got %d", len(f.repo.customers))
	}
	if len(f.repo.appointments) != 0 {
		t.Fatal("appointment persisted despite lookup failure")
	}
}

func TestCreateBookingLockContention(t *testing.T) {
	f := newBookingFixture()
	f.locker.held = true

	_, err := f.uc.Execute(context.Background(), baseInput())
	if !httperr.IsBusiness(err, "booking_in_progress") {
		t.Fatalf("expected booking_in_progress, got %v", err)
	}
	if len(f.repo.appointments) != 0 {
		t.Fatal("appointment created despite lock contention")
	}
}

func TestCreateBookingLockBackendDownStillBooks(t *testing.T) {
	f := newBookingFixture()
	f.locker.err = errors.New("redis down")

	out, err := f.uc.Execute(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("expected bypass to proceed, got %v", err)
	}
	if len(out.AppointmentIDs) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(out.AppointmentIDs))
	}
}

func TestCreateBookingRemovesCheckoutHold(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()
	in.HoldKey = "hold:1|3|2026-03-05T13:00:00Z|sess-abc"

	if _, err := f.uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.holds.removed) != 1 || f.holds.removed[0] != in.HoldKey {
		t.Fatalf("hold not removed: %v", f.holds.removed)
	}
}

func TestCreateBookingWeeklyRecurrence(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()
	in.Recurrence = &domain.Recurrence{
		Frequency: domain.FrequencyWeekly,
		Interval:  1,
		Count:     3,
	}

	out, err := f.uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.AppointmentIDs) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(out.AppointmentIDs))
	}

	var seriesID string
	for i, id := range out.AppointmentIDs {
		ap := f.repo.appointments[id]
		rep := ap.Metadata.Repeat
		if rep == nil {
			t.Fatalf("occurrence %d missing repeat descriptor", i)
		}
		if seriesID == "" {
			seriesID = rep.SeriesID
		}
		if rep.SeriesID != seriesID || rep.SeriesID == "" {
			t.Fatalf("series id mismatch at occurrence %d: %q", i, rep.SeriesID)
		}
		if rep.Index != i {
			t.Fatalf("expected index %d, got %d", i, rep.Index)
		}

		wantStart := in.Start.AddDate(0, 0, 7*i)
		if !ap.StartTime.Equal(wantStart) {
			t.Fatalf("occurrence %d start: expected %v, got %v", i, wantStart, ap.StartTime)
		}
		if !rep.Until.Equal(in.Start.AddDate(0, 0, 14)) {
			t.Fatalf("occurrence %d until mismatch: %v", i, rep.Until)
		}
	}

	// um único evento de sync cobre a série inteira
	if len(f.bus.events) != 1 || len(f.bus.events[0].ids) != 3 {
		t.Fatalf("expected single sync event with 3 ids, got %+v", f.bus.events)
	}
	if len(f.repo.tokens) != 3 {
		t.Fatalf("expected one access token per occurrence, got %d", len(f.repo.tokens))
	}
}

func TestCreateBookingRecurrenceStopsAtYearEnd(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()
	in.Start = time.Date(2026, 12, 21, 13, 0, 0, 0, time.UTC)
	in.End = in.Start.Add(45 * time.Minute)
	in.Recurrence = &domain.Recurrence{
		Frequency: domain.FrequencyWeekly,
		Interval:  1,
		Count:     4,
	}

	out, err := f.uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.AppointmentIDs) != 2 {
		t.Fatalf("expected series truncated at year end (2), got %d", len(out.AppointmentIDs))
	}
}

func TestCreateBookingResolvesCustomerByPhone(t *testing.T) {
	f := newBookingFixture()

	in := baseInput()
	in.Customer = CustomerRequest{Name: "Ana", Phone: "11999990000"}

	out, err := f.uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ap := f.repo.appointments[out.AppointmentIDs[0]]
	if ap.CustomerID == nil || *ap.CustomerID != customerID {
		t.Fatalf("expected existing customer %d reused, got %v", customerID, ap.CustomerID)
	}

	// telefone desconhecido cria cliente novo
	in2 := baseInput()
	in2.Customer = CustomerRequest{Name: "Duda", Phone: "11977770000", Email: "duda@example.com"}
	out2, err := f.uc.Execute(context.Background(), in2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ap2 := f.repo.appointments[out2.AppointmentIDs[0]]
	created := f.repo.customers[*ap2.CustomerID]
	if created.Name != "Duda" || created.LocationID != locID {
		t.Fatalf("new customer not persisted correctly: %+v", created)
	}
}

func TestCreateBookingStoresAttachments(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()
	in.Attachments = []AttachmentUpload{
		{FileName: "antes.jpg", ContentType: "image/jpeg", Data: []byte("fake-jpeg")},
	}

	out, err := f.uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.attachments) != 1 {
		t.Fatalf("expected 1 attachment row, got %d", len(f.repo.attachments))
	}
	att := f.repo.attachments[0]
	if att.AppointmentID != out.AppointmentIDs[0] || att.SizeBytes != 9 {
		t.Fatalf("attachment metadata mismatch: %+v", att)
	}
	if _, ok := f.attach.objects[att.StorageKey]; !ok {
		t.Fatalf("object not uploaded under key %s", att.StorageKey)
	}
}

func TestCreateBookingRejectsOversizedAttachment(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()
	in.Attachments = []AttachmentUpload{
		{FileName: "laudo.bin", ContentType: "application/octet-stream", Data: []byte("x")},
	}

	_, err := f.uc.Execute(context.Background(), in)
	if !httperr.IsBusiness(err, "attachment_type_not_allowed") {
		t.Fatalf("expected attachment_type_not_allowed, got %v", err)
	}
}

func TestCreateBookingSendsConfirmations(t *testing.T) {
	f := newBookingFixture()
	in := baseInput()
	in.Notifications = NotificationFlags{Email: true, SMS: true}

	if _, err := f.uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "ana@example.com" {
		t.Fatalf("expected confirmation email to ana@example.com, got %v", f.mailer.sent)
	}
	if len(f.sms.sent) != 1 || f.sms.sent[0] != "11999990000" {
		t.Fatalf("expected confirmation sms, got %v", f.sms.sent)
	}
}
