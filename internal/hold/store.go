package hold

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ======================================================
// SLOT HOLD STORE
// ======================================================
// Reserva soft de um slot durante o checkout. Holds são apenas
// advisory: escondem o slot do resolver de disponibilidade, mas quem
// impede escrita conflitante é o lock + a transação.

type Hold struct {
	LocationID uint      `json:"location_id"`
	StaffID    uint      `json:"staff_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"` // fim do slot reservado, não do TTL

	// Discriminador: id da sessão de checkout (online) ou
	// "manual:<uuid>" (criado pela recepção).
	Discriminator string `json:"discriminator"`

	ServiceNames []string  `json:"service_names,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (h Hold) Key() string {
	return Key(h.LocationID, h.StaffID, h.Start, h.Discriminator)
}

func (h Hold) IsManual() bool {
	return strings.HasPrefix(h.Discriminator, "manual:")
}

// Key monta a chave estrutural do hold:
// hold:{locationId}|{staffId}|{isoStart}|{discriminator}
func Key(locationID, staffID uint, start time.Time, discriminator string) string {
	return fmt.Sprintf(
		"hold:%d|%d|%s|%s",
		locationID,
		staffID,
		start.UTC().Format(time.RFC3339),
		discriminator,
	)
}

func ManualDiscriminator() string {
	return "manual:" + uuid.NewString()
}

// LocationPrefix é o prefixo de SCAN de todos os holds de um local.
func LocationPrefix(locationID uint) string {
	return fmt.Sprintf("hold:%d|", locationID)
}

// ======================================================
// STORE
// ======================================================

type Store interface {
	Store(ctx context.Context, h Hold, ttl time.Duration) error
	List(ctx context.Context, locationID uint) ([]Hold, error)
	Remove(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Store(ctx context.Context, h Hold, ttl time.Duration) error {
	h.ExpiresAt = time.Now().Add(ttl)

	payload, err := json.Marshal(h)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, h.Key(), payload, ttl).Err()
}

// List varre os holds do local. Expirados são filtrados aqui (lazy):
// o TTL do Redis remove a chave, mas o SCAN pode correr antes disso.
func (s *RedisStore) List(ctx context.Context, locationID uint) ([]Hold, error) {
	var (
		holds  []Hold
		cursor uint64
		now    = time.Now()
	)

	pattern := LocationPrefix(locationID) + "*"

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			raw, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				continue // expirou entre o SCAN e o GET
			}

			var h Hold
			if err := json.Unmarshal(raw, &h); err != nil {
				continue
			}
			if !h.ExpiresAt.After(now) {
				continue
			}

			holds = append(holds, h)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return holds, nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

var _ Store = (*RedisStore)(nil)
