package ws

// Inbound message types.
const (
	TypeCreateRoom  = "create-room"
	TypeJoinRoom    = "join-room"
	TypeChatMessage = "chat-message"
)

// Outbound message types.
const (
	TypeRoomCreated     = "room-created"
	TypeJoinedRoom      = "joined-room"
	TypeUserCountUpdate = "user-count-update"
	TypeError           = "error"
)
