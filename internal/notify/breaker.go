package notify

import (
	"context"
	"sync"
	"time"

	"github.com/salonkit/salon-scheduler/internal/httperr"
)

// ======================================================
// CIRCUIT BREAKER
// ======================================================
// Envolve o mailer: depois de N falhas seguidas o circuito abre e os
// envios falham imediato até o cooldown passar, para não martelar um
// provedor fora do ar.

type BreakerMailer struct {
	inner Mailer

	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time

	now func() time.Time
}

func NewBreakerMailer(inner Mailer, threshold int, cooldown time.Duration) *BreakerMailer {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &BreakerMailer{
		inner:     inner,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (b *BreakerMailer) Send(ctx context.Context, to string, msg Message) error {
	if !b.allow() {
		return httperr.ErrBusiness("mailer_circuit_open")
	}

	err := b.inner.Send(ctx, to, msg)
	b.record(err)
	return err
}

func (b *BreakerMailer) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}

	// aberto: deixa uma tentativa passar depois do cooldown
	if b.now().Sub(b.openedAt) >= b.cooldown {
		b.failures = b.threshold - 1
		return true
	}

	return false
}

func (b *BreakerMailer) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		return
	}

	b.failures++
	if b.failures == b.threshold {
		b.openedAt = b.now()
	}
}

var _ Mailer = (*BreakerMailer)(nil)
