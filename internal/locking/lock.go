package locking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ======================================================
// DISTRIBUTED LOCK
// ======================================================
// Exclusão mútua advisory por chave de recurso. Aquisição é uma única
// tentativa não bloqueante: falhar significa "contenção", não erro.
// Se o backend estiver fora, o caller pode seguir em modo bypass
// (disponibilidade > exclusão, risco aceito).

type Locker interface {
	// Acquire devolve (token, true) quando o lock foi obtido, ("",
	// false) quando já está tomado. Erro só quando o backend falhou.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	Release(ctx context.Context, key string, token string)
}

// BookingKey serializa criações por local; locais diferentes nunca
// contendem entre si.
func BookingKey(locationID uint) string {
	return fmt.Sprintf("lock:booking:%d", locationID)
}

// RescheduleKey serializa movimentações de um item específico.
func RescheduleKey(locationID, itemID uint) string {
	return fmt.Sprintf("lock:reschedule:%d:%d", locationID, itemID)
}

// ======================================================
// REDIS
// ======================================================

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (string, bool, error) {

	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// compara o token antes de deletar para não soltar lock de outro dono
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

func (l *RedisLocker) Release(ctx context.Context, key string, token string) {
	if token == "" {
		return
	}
	if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		log.Printf("lock release failed for %s: %v", key, err)
	}
}

var _ Locker = (*RedisLocker)(nil)
