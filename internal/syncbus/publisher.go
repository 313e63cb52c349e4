package syncbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ======================================================
// SYNC PUBLISHER
// ======================================================
// Broadcast cross-process para sessões de calendário abertas. Fire and
// forget: nenhuma garantia de entrega, falha nunca sobe pro caller.

const (
	ActionCreated     = "created"
	ActionRescheduled = "rescheduled"
	ActionCancelled   = "cancelled"
	ActionCompleted   = "completed"
	ActionNoShow      = "no_show"
)

type Event struct {
	LocationID     uint      `json:"location_id"`
	Action         string    `json:"action"`
	AppointmentIDs []uint    `json:"appointment_ids"`
	Timestamp      time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(locationID uint, action string, appointmentIDs []uint)
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func channel(locationID uint) string {
	return fmt.Sprintf("calendar_sync:%d", locationID)
}

func (p *RedisPublisher) Publish(locationID uint, action string, appointmentIDs []uint) {
	ev := Event{
		LocationID:     locationID,
		Action:         action,
		AppointmentIDs: appointmentIDs,
		Timestamp:      time.Now().UTC(),
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.client.Publish(ctx, channel(locationID), payload).Err(); err != nil {
		log.Printf("sync publish failed for location %d: %v", locationID, err)
	}
}

var _ Publisher = (*RedisPublisher)(nil)
