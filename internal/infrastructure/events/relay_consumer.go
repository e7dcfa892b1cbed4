package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/huddle/internal/domain"
	"github.com/hilthontt/huddle/internal/infrastructure/contracts"
	"github.com/hilthontt/huddle/internal/infrastructure/logging"
	"github.com/hilthontt/huddle/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RelayConsumer drains the rooms queue and turns lifecycle events into audit
// log entries. With a nil repository it degrades to logging only.
type RelayConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.RoomAuditRepository
	logger   *zap.SugaredLogger
}

func NewRelayConsumer(rabbitmq *messaging.RabbitMQ, audit domain.RoomAuditRepository, logger *zap.SugaredLogger) *RelayConsumer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &RelayConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
		logger:   logger,
	}
}

// Listen blocks consuming the rooms queue until the channel closes.
func (c *RelayConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.RoomsQueue, c.handle)
}

func (c *RelayConsumer) handle(ctx context.Context, msg amqp.Delivery) error {
	var envelope contracts.AmqpMessage
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	var event messaging.RoomEventData
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal room event: %w", err)
	}

	c.logger.Infow("room event received",
		logging.Args(logging.RabbitMQ, logging.ExternalService, map[logging.ExtraKey]any{
			logging.RoomCode: event.Room.Code,
			"routingKey":     msg.RoutingKey,
		})...)

	if c.audit == nil {
		return nil
	}

	entry, err := auditLogFor(msg.RoutingKey, event.Room)
	if err != nil {
		return err
	}

	return c.audit.Log(ctx, entry)
}

func auditLogFor(routingKey string, room domain.Room) (*domain.RoomAuditLog, error) {
	switch routingKey {
	case contracts.EventRoomCreated:
		return domain.NewRoomCreatedLog(room), nil
	case contracts.EventRoomJoined:
		return domain.NewMemberJoinedLog(room), nil
	case contracts.EventMemberLeft:
		return domain.NewMemberLeftLog(room), nil
	case contracts.EventRoomExpired:
		return domain.NewRoomExpiredLog(room), nil
	default:
		return nil, fmt.Errorf("unknown routing key %q", routingKey)
	}
}
