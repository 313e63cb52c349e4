package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ======================================================
// BUSINESS ERRORS
// ======================================================
// Classes de erro do domínio. Tudo que pode corromper dados aborta a
// transação; o Kind decide o status HTTP na borda.

type Kind int

const (
	KindValidation Kind = iota
	KindAuthorization
	KindConflict
	KindTenant
)

type BusinessError struct {
	Code string
	Kind Kind
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code, Kind: KindValidation}
}

func ErrAuthorization(code string) error {
	return BusinessError{Code: code, Kind: KindAuthorization}
}

// ErrConflict é a classe "tente de novo": contenção de lock, conflito
// de horário, profissional fora do local no reschedule.
func ErrConflict(code string) error {
	return BusinessError{Code: code, Kind: KindConflict}
}

// ErrTenant sinaliza violação de isolamento entre tenants/locais.
func ErrTenant(code string) error {
	return BusinessError{Code: code, Kind: KindTenant}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

// IsUniqueViolation detecta violação de índice único do Postgres
// (slug de local, email de staff, escopo de consentimento) que
// escapou da validação de aplicação numa corrida.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
