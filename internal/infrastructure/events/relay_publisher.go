package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hilthontt/huddle/internal/domain"
	"github.com/hilthontt/huddle/internal/infrastructure/contracts"
	"github.com/hilthontt/huddle/internal/infrastructure/logging"
	"github.com/hilthontt/huddle/internal/infrastructure/messaging"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// RelayPublisher mirrors room lifecycle changes onto the relay exchange.
// Publishing is best effort: a broker hiccup is logged and the relay keeps
// serving traffic.
type RelayPublisher struct {
	rabbitmq *messaging.RabbitMQ
	logger   *zap.SugaredLogger
}

func NewRelayPublisher(rabbitmq *messaging.RabbitMQ, logger *zap.SugaredLogger) *RelayPublisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &RelayPublisher{
		rabbitmq: rabbitmq,
		logger:   logger,
	}
}

func (p *RelayPublisher) RoomCreated(room domain.Room) {
	p.publish(contracts.EventRoomCreated, room)
}

func (p *RelayPublisher) RoomJoined(room domain.Room) {
	p.publish(contracts.EventRoomJoined, room)
}

func (p *RelayPublisher) MemberLeft(room domain.Room) {
	p.publish(contracts.EventMemberLeft, room)
}

func (p *RelayPublisher) RoomExpired(room domain.Room) {
	p.publish(contracts.EventRoomExpired, room)
}

func (p *RelayPublisher) publish(routingKey string, room domain.Room) {
	data, err := json.Marshal(messaging.RoomEventData{Room: room})
	if err != nil {
		p.logger.Errorw("failed to marshal room event",
			logging.Args(logging.RabbitMQ, logging.ExternalService, map[logging.ExtraKey]any{
				logging.RoomCode:     room.Code,
				logging.ErrorMessage: err.Error(),
			})...)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := contracts.AmqpMessage{
		RoomCode: room.Code,
		Data:     data,
	}

	if err := p.rabbitmq.PublishMessage(ctx, routingKey, msg); err != nil {
		p.logger.Errorw("failed to publish room event",
			logging.Args(logging.RabbitMQ, logging.ExternalService, map[logging.ExtraKey]any{
				logging.RoomCode:     room.Code,
				logging.ErrorMessage: err.Error(),
			})...)
	}
}
