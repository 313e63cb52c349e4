package audit

import (
	"testing"
	"time"
)

type chanSink chan Entry

func (s chanSink) Log(e Entry) error {
	s <- e
	return nil
}

func TestDispatcherDeliversAsync(t *testing.T) {
	sink := make(chanSink, 1)
	d := NewDispatcher(sink)

	id := uint(7)
	d.Dispatch(Entry{
		LocationID: 1,
		Action:     "booking_lock_bypassed",
		Entity:     "location",
		EntityID:   &id,
	})

	select {
	case got := <-sink:
		if got.Action != "booking_lock_bypassed" || got.LocationID != 1 {
			t.Fatalf("unexpected entry: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("entry not delivered")
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	// sink bloqueado: a fila enche e o excedente é descartado sem travar
	blocked := make(chanSink)
	d := NewDispatcher(blocked)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			d.Dispatch(Entry{LocationID: 1, Action: "noise"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on full queue")
	}
}
