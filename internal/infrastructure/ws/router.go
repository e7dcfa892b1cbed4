package ws

import (
	"github.com/hilthontt/huddle/internal/domain"
	"github.com/hilthontt/huddle/internal/infrastructure/metrics"
)

// Broadcast routing. Delivery is a non-blocking push onto each member's
// buffered send channel: a slow or broken recipient drops its copy without
// holding up the rest of the room. Iteration happens under the registry lock,
// so a connection closing mid-broadcast cannot corrupt it.

// BroadcastChat delivers a chat message to every member of the room, tagging
// the originating connection's copy with isOwnMessage. Returns the number of
// members whose buffers accepted the message.
func (r *Registry) BroadcastChat(code, content, sender string, origin *Client) (int, error) {
	code = domain.NormalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[code]
	if !ok {
		return 0, domain.ErrRoomNotFound
	}

	if m, ok := r.meta[code]; ok {
		m.lastActivity = r.now()
	}

	delivered := 0
	for member := range set {
		if member.trySend(NewChat(content, sender, member == origin)) {
			delivered++
		}
	}

	metrics.MessagesRelayed.Inc()

	return delivered, nil
}

// BroadcastUserCount delivers a user-count-update to every current member.
func (r *Registry) BroadcastUserCount(code string, count int) {
	code = domain.NormalizeCode(code)

	r.mu.RLock()
	r.broadcastUserCountLocked(code, count)
	r.mu.RUnlock()
}

// SendError delivers an error event to a single connection, never broadcast.
func (r *Registry) SendError(c *Client, message string) {
	c.trySend(NewError(message))
}

func (r *Registry) broadcastUserCountLocked(code string, count int) {
	for member := range r.members[code] {
		member.trySend(NewUserCount(count))
	}
}

// broadcastUserCountExceptLocked notifies every member but skip, for flows
// where skip has already been told the count in its ack.
func (r *Registry) broadcastUserCountExceptLocked(code string, count int, skip *Client) {
	for member := range r.members[code] {
		if member == skip {
			continue
		}
		member.trySend(NewUserCount(count))
	}
}
