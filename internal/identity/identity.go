package identity

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/salonkit/salon-scheduler/internal/models"
)

// ======================================================
// COLLABORATOR CONTRACTS
// ======================================================
// Resolução de tenant e verificação de ator são colaboradores
// externos; o engine só consome os contratos.

type TenantResolver interface {
	Resolve(ctx context.Context, slug string) (tenantID uint, err error)
}

// ActorVerifier comprova que quem executa a ação é o profissional
// alegado (PIN de balcão).
type ActorVerifier interface {
	Verify(ctx context.Context, pin string, staffID uint) bool
}

// ======================================================
// BCRYPT PIN VERIFIER
// ======================================================

type staffGetter interface {
	GetStaffByID(ctx context.Context, id uint) (*models.Staff, error)
}

type PINVerifier struct {
	repo staffGetter
}

func NewPINVerifier(repo staffGetter) *PINVerifier {
	return &PINVerifier{repo: repo}
}

func (v *PINVerifier) Verify(ctx context.Context, pin string, staffID uint) bool {
	if pin == "" {
		return false
	}

	staff, err := v.repo.GetStaffByID(ctx, staffID)
	if err != nil || staff.PINHash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(staff.PINHash), []byte(pin)) == nil
}

var _ ActorVerifier = (*PINVerifier)(nil)

func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
