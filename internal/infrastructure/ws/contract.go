package ws

// Outbound payloads. The wire format is flat JSON with a "type" discriminator.

type RoomCreatedPayload struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserCount int    `json:"userCount"`
}

type JoinedRoomPayload struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type UserCountPayload struct {
	Type      string `json:"type"`
	UserCount int    `json:"userCount"`
}

type ChatPayload struct {
	Type         string `json:"type"`
	Content      string `json:"content"`
	Sender       string `json:"sender"`
	IsOwnMessage bool   `json:"isOwnMessage"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewRoomCreated(code string, userCount int) RoomCreatedPayload {
	return RoomCreatedPayload{
		Type:      TypeRoomCreated,
		RoomID:    code,
		UserCount: userCount,
	}
}

func NewJoinedRoom(code string) JoinedRoomPayload {
	return JoinedRoomPayload{
		Type:   TypeJoinedRoom,
		RoomID: code,
	}
}

func NewUserCount(userCount int) UserCountPayload {
	return UserCountPayload{
		Type:      TypeUserCountUpdate,
		UserCount: userCount,
	}
}

func NewChat(content, sender string, isOwn bool) ChatPayload {
	return ChatPayload{
		Type:         TypeChatMessage,
		Content:      content,
		Sender:       sender,
		IsOwnMessage: isOwn,
	}
}

func NewError(message string) ErrorPayload {
	return ErrorPayload{
		Type:    TypeError,
		Message: message,
	}
}
