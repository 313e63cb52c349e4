package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/salonkit/salon-scheduler/internal/httperr"
)

type flakyMailer struct {
	err   error
	calls int
}

func (m *flakyMailer) Send(ctx context.Context, to string, msg Message) error {
	m.calls++
	return m.err
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	inner := &flakyMailer{err: errors.New("smtp timeout")}
	b := NewBreakerMailer(inner, 3, time.Minute)

	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	ctx := context.Background()
	msg := Message{Subject: "x"}

	for i := 0; i < 3; i++ {
		if err := b.Send(ctx, "a@b.c", msg); err == nil {
			t.Fatalf("send %d should fail", i)
		}
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 passthrough calls, got %d", inner.calls)
	}

	// circuito aberto: falha imediata, sem bater no provedor
	if err := b.Send(ctx, "a@b.c", msg); !httperr.IsBusiness(err, "mailer_circuit_open") {
		t.Fatalf("expected mailer_circuit_open, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("open circuit must not call inner, got %d calls", inner.calls)
	}
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	inner := &flakyMailer{err: errors.New("smtp timeout")}
	b := NewBreakerMailer(inner, 2, time.Minute)

	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	ctx := context.Background()
	msg := Message{}

	b.Send(ctx, "a@b.c", msg)
	b.Send(ctx, "a@b.c", msg)

	// cooldown passou e o provedor voltou
	now = now.Add(2 * time.Minute)
	inner.err = nil

	if err := b.Send(ctx, "a@b.c", msg); err != nil {
		t.Fatalf("half-open probe should pass: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected probe to reach inner, got %d calls", inner.calls)
	}

	// sucesso fecha o circuito de vez
	if err := b.Send(ctx, "a@b.c", msg); err != nil {
		t.Fatalf("closed circuit should send: %v", err)
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	inner := &flakyMailer{err: errors.New("smtp timeout")}
	b := NewBreakerMailer(inner, 2, time.Minute)

	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	ctx := context.Background()
	b.Send(ctx, "a@b.c", Message{})
	b.Send(ctx, "a@b.c", Message{})

	now = now.Add(2 * time.Minute)

	// probe falha: volta a abrir imediatamente
	if err := b.Send(ctx, "a@b.c", Message{}); err == nil {
		t.Fatal("probe should fail")
	}
	if err := b.Send(ctx, "a@b.c", Message{}); !httperr.IsBusiness(err, "mailer_circuit_open") {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}

func TestBreakerSuccessResetsCounter(t *testing.T) {
	inner := &flakyMailer{err: errors.New("smtp timeout")}
	b := NewBreakerMailer(inner, 3, time.Minute)

	ctx := context.Background()
	b.Send(ctx, "a@b.c", Message{})
	b.Send(ctx, "a@b.c", Message{})

	inner.err = nil
	if err := b.Send(ctx, "a@b.c", Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// duas falhas novas não bastam para abrir de novo
	inner.err = errors.New("smtp timeout")
	b.Send(ctx, "a@b.c", Message{})
	b.Send(ctx, "a@b.c", Message{})

	inner.err = nil
	if err := b.Send(ctx, "a@b.c", Message{}); err != nil {
		t.Fatalf("circuit must still be closed: %v", err)
	}
}
