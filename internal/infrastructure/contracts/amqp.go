package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomCode string `json:"roomCode"`
	Data     []byte `json:"data"`
}

// Routing keys - using consistent event patterns
const (
	EventRoomCreated = "room.created"
	EventRoomJoined  = "room.joined"
	EventRoomExpired = "room.expired"
	EventMemberLeft  = "member.left"
)
