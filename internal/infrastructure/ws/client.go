package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/huddle/internal/infrastructure/metrics"
	"github.com/hilthontt/huddle/internal/infrastructure/validate"
	"go.uber.org/zap"
)

// sendBufferSize bounds the per-connection outbound queue; broadcasts drop a
// recipient's copy rather than block when it fills up.
const sendBufferSize = 64

type Client struct {
	conn *connWrapper
	send chan any
	ID   string

	registry *Registry
	logger   *zap.SugaredLogger

	// room is the bound room code; closed latches the send-channel close.
	// Both are owned by the registry and mutated only under its lock.
	room   string
	closed bool
}

func NewClient(conn *websocket.Conn, registry *Registry, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		conn:     newConnWrapper(conn),
		send:     make(chan any, sendBufferSize),
		ID:       uuid.NewString(),
		registry: registry,
		logger:   logger,
	}
}

// trySend queues a message without blocking.
func (c *Client) trySend(msg any) bool {
	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		metrics.MessagesDropped.Inc()
		c.logger.Warnw("client buffer full, dropping message", "client", c.ID)
		return false
	}
}

// ReadPump consumes inbound frames until the connection errors or closes,
// then unconditionally removes the connection from its room.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Leave(c)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("read error", "client", c.ID, "err", err)
			}
			return
		}

		c.dispatch(raw)
	}
}

// WritePump drains the send channel onto the connection. It exits when the
// registry closes the channel on leave, or on the first write error.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Debugw("write error", "client", c.ID, "err", err)
			return
		}
	}
}

type inboundFrame struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// dispatch parses one inbound frame and invokes the matching registry
// operation. Every failure is reported to this connection only; nothing here
// terminates the connection.
func (c *Client) dispatch(raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.registry.SendError(c, "Invalid message")
		return
	}

	switch frame.Type {
	case TypeCreateRoom:
		c.handleCreateRoom(frame)
	case TypeJoinRoom:
		c.handleJoinRoom(frame)
	case TypeChatMessage:
		c.handleChatMessage(frame)
	default:
		c.registry.SendError(c, "Unknown message type")
	}
}

func (c *Client) handleCreateRoom(frame inboundFrame) {
	code, count, err := c.registry.CreateRoom(frame.RoomID, c)
	if err != nil {
		c.logger.Errorw("create room failed", "client", c.ID, "err", err)
		c.registry.SendError(c, "Failed to create room")
		return
	}

	c.logger.Debugw("client created room", "client", c.ID, "room", code, "members", count)
}

func (c *Client) handleJoinRoom(frame inboundFrame) {
	if err := validate.Field("roomId", validate.Required())(frame.RoomID); err != nil {
		c.registry.SendError(c, err.Error())
		return
	}

	if _, err := c.registry.JoinRoom(frame.RoomID, c); err != nil {
		c.registry.SendError(c, "Room not found")
	}
}

func (c *Client) handleChatMessage(frame inboundFrame) {
	fields := []struct {
		name  string
		value string
	}{
		{"roomId", frame.RoomID},
		{"content", frame.Content},
		{"sender", frame.Sender},
	}

	for _, f := range fields {
		if err := validate.Field(f.name, validate.Required())(f.value); err != nil {
			c.registry.SendError(c, err.Error())
			return
		}
	}

	if _, err := c.registry.BroadcastChat(frame.RoomID, frame.Content, frame.Sender, c); err != nil {
		c.registry.SendError(c, "Room not found")
	}
}
