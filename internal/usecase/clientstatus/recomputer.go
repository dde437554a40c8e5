package clientstatus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/events"
)

// Recomputer consumes client status events and recomputes the client's
// meeting_count, active_meeting_count and is_active.
type Recomputer struct {
	subscriber message.Subscriber
	clients    repositories.ClientRepository
	topic      string
	logger     *zap.Logger
}

// NewRecomputer creates a new recomputer
func NewRecomputer(subscriber message.Subscriber, topic string, clients repositories.ClientRepository, logger *zap.Logger) *Recomputer {
	return &Recomputer{
		subscriber: subscriber,
		clients:    clients,
		topic:      topic,
		logger:     logger,
	}
}

// Run subscribes and processes messages until ctx is done
func (r *Recomputer) Run(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			r.process(msg.Context(), msg)
		}
	}()

	return nil
}

func (r *Recomputer) process(ctx context.Context, msg *message.Message) {
	var event events.ClientStatusTouched
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		if r.logger != nil {
			r.logger.Error("invalid client status message", zap.String("message_id", msg.UUID), zap.Error(err))
		}
		// unparsable messages are dropped
		msg.Ack()
		return
	}

	if err := r.Handle(ctx, event); err != nil {
		if errors.Is(err, entities.ErrClientNotFound) {
			msg.Ack()
			return
		}
		if r.logger != nil {
			r.logger.Error("failed to recompute client status",
				zap.String("client_id", event.ClientID.String()),
				zap.Error(err),
			)
		}
		msg.Nack()
		return
	}
	msg.Ack()
}

// Handle recomputes one client's counters
func (r *Recomputer) Handle(ctx context.Context, event events.ClientStatusTouched) error {
	client, err := r.clients.RecomputeCounts(ctx, event.ClientID, event.AdvisorID)
	if err != nil {
		return err
	}
	if r.logger != nil {
		r.logger.Debug("client status recomputed",
			zap.String("client_id", client.ID.String()),
			zap.Int("meeting_count", client.MeetingCount),
			zap.Int("active_meeting_count", client.ActiveMeetingCount),
			zap.Bool("is_active", client.IsActive),
		)
	}
	return nil
}
