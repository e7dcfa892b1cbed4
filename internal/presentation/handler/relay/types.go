package relay

import (
	"time"

	"github.com/hilthontt/huddle/internal/domain"
)

// roomResponse is the REST snapshot of a live room
type roomResponse struct {
	Code           string    `json:"code"`
	MemberCount    int       `json:"memberCount"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// auditResponse wraps a room's persisted lifecycle events, newest first
type auditResponse struct {
	RoomCode string                `json:"roomCode"`
	Events   []domain.RoomAuditLog `json:"events"`
}
