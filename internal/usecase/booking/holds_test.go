package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/httperr"
)

func newHoldsUC(f *bookingFixture) *ManageHolds {
	return NewManageHolds(f.repo, f.holds, f.verifier, 30*time.Minute)
}

func TestPlaceManualHold(t *testing.T) {
	f := newBookingFixture()
	uc := newHoldsUC(f)

	start := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	h, err := uc.Place(context.Background(), PlaceHoldInput{
		LocationID:   locID,
		StaffID:      stylistID,
		Start:        start,
		End:          start.Add(45 * time.Minute),
		ServiceNames: []string{"Corte"},
		Actor:        Actor{StaffID: adminID, PIN: "1234"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !h.IsManual() {
		t.Fatalf("expected manual discriminator, got %q", h.Discriminator)
	}
	if h.CreatedBy != "Marta" {
		t.Fatalf("expected creator name, got %q", h.CreatedBy)
	}
	if !strings.HasPrefix(h.Key(), hold.LocationPrefix(locID)) {
		t.Fatalf("key outside location prefix: %s", h.Key())
	}

	listed, err := uc.List(context.Background(), locID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 hold, got %d", len(listed))
	}
}

func TestPlaceHoldValidations(t *testing.T) {
	f := newBookingFixture()
	uc := newHoldsUC(f)
	start := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)

	_, err := uc.Place(context.Background(), PlaceHoldInput{
		LocationID: locID,
		StaffID:    stylistID,
		Start:      start,
		End:        start, // intervalo vazio
		Actor:      Actor{StaffID: adminID, PIN: "1234"},
	})
	if !httperr.IsBusiness(err, "invalid_time_range") {
		t.Fatalf("expected invalid_time_range, got %v", err)
	}

	_, err = uc.Place(context.Background(), PlaceHoldInput{
		LocationID: locID,
		StaffID:    999,
		Start:      start,
		End:        start.Add(time.Hour),
		Actor:      Actor{StaffID: adminID, PIN: "1234"},
	})
	if !httperr.IsBusiness(err, "staff_not_in_location") {
		t.Fatalf("expected staff_not_in_location, got %v", err)
	}

	_, err = uc.Place(context.Background(), PlaceHoldInput{
		LocationID: locID,
		StaffID:    stylistID,
		Start:      start,
		End:        start.Add(time.Hour),
		Actor:      Actor{StaffID: adminID, PIN: "9999"},
	})
	if !httperr.IsBusiness(err, "invalid_pin") {
		t.Fatalf("expected invalid_pin, got %v", err)
	}
}

func TestReleaseHold(t *testing.T) {
	f := newBookingFixture()
	uc := newHoldsUC(f)
	start := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)

	h, err := uc.Place(context.Background(), PlaceHoldInput{
		LocationID: locID,
		StaffID:    stylistID,
		Start:      start,
		End:        start.Add(time.Hour),
		Actor:      Actor{StaffID: adminID, PIN: "1234"},
	})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	if err := uc.Release(context.Background(), locID, h.Key(), Actor{StaffID: adminID, PIN: "1234"}); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if len(f.holds.holds) != 0 {
		t.Fatalf("hold not removed: %v", f.holds.holds)
	}
}

func TestReleaseHoldFromAnotherLocation(t *testing.T) {
	f := newBookingFixture()
	uc := newHoldsUC(f)

	// chave estruturalmente válida, mas de outro local
	foreign := hold.Key(77, stylistID, time.Now(), "manual:abc")
	err := uc.Release(context.Background(), locID, foreign, Actor{StaffID: adminID, PIN: "1234"})
	if !httperr.IsBusiness(err, "hold_not_in_location") {
		t.Fatalf("expected hold_not_in_location, got %v", err)
	}
}
