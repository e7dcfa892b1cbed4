package messaging

import "github.com/hilthontt/huddle/internal/domain"

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

type RoomEventData struct {
	Room domain.Room `json:"room"`
}
