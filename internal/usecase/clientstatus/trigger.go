package clientstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/events"
)

// EventPublisher publishes events outside the process (NATS)
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Trigger marks a client's aggregate status as stale. The write to
// last_activity_sync is the signal; the bus messages wake the recomputer.
type Trigger struct {
	clients  repositories.ClientRepository
	bus      message.Publisher
	external EventPublisher
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

// NewTrigger creates a new trigger. bus and external may be nil.
func NewTrigger(
	clients repositories.ClientRepository,
	bus message.Publisher,
	topic string,
	external EventPublisher,
	logger *zap.Logger,
) *Trigger {
	return &Trigger{
		clients:  clients,
		bus:      bus,
		external: external,
		topic:    topic,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Touch stamps the client and publishes a status event.
// Publish failures are logged and never returned.
func (t *Trigger) Touch(ctx context.Context, clientID, advisorID uuid.UUID) error {
	now := t.now()
	if err := t.clients.Touch(ctx, clientID, advisorID, now); err != nil {
		return fmt.Errorf("failed to touch client %s: %w", clientID, err)
	}

	event := events.ClientStatusTouched{
		ClientID:  clientID,
		AdvisorID: advisorID,
		TouchedAt: now,
	}

	if t.bus != nil {
		if err := t.publishLocal(event); err != nil && t.logger != nil {
			t.logger.Warn("failed to publish client status event",
				zap.String("client_id", clientID.String()),
				zap.Error(err),
			)
		}
	}

	if t.external != nil {
		if err := t.external.Publish(ctx, event); err != nil && t.logger != nil {
			t.logger.Warn("failed to publish client status event to NATS",
				zap.String("client_id", clientID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (t *Trigger) publishLocal(event events.ClientStatusTouched) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return t.bus.Publish(t.topic, msg)
}
