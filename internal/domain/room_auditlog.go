package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RoomEventType string

const (
	EventRoomCreated  RoomEventType = "room_created"
	EventRoomExpired  RoomEventType = "room_expired"
	EventMemberJoined RoomEventType = "member_joined"
	EventMemberLeft   RoomEventType = "member_left"
)

type RoomAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomCode  string         `bson:"room_code" json:"roomCode"`
	EventType RoomEventType  `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// RoomAuditRepository persists lifecycle events. Retention is handled by a
// TTL index, not by the application.
type RoomAuditRepository interface {
	Log(ctx context.Context, log *RoomAuditLog) error
	GetByRoomCode(ctx context.Context, roomCode string, limit int) ([]RoomAuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

func NewRoomCreatedLog(room Room) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomCode:  room.Code,
		EventType: EventRoomCreated,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"member_count": room.MemberCount,
		},
	}
}

func NewRoomExpiredLog(room Room) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomCode:  room.Code,
		EventType: EventRoomExpired,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"idle_since": room.LastActivityAt,
		},
	}
}

func NewMemberJoinedLog(room Room) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomCode:  room.Code,
		EventType: EventMemberJoined,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"member_count": room.MemberCount,
		},
	}
}

func NewMemberLeftLog(room Room) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomCode:  room.Code,
		EventType: EventMemberLeft,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"member_count": room.MemberCount,
		},
	}
}
