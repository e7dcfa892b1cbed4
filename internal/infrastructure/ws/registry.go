package ws

import (
	"sync"
	"time"

	"github.com/hilthontt/huddle/internal/domain"
	"github.com/hilthontt/huddle/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const maxCodeAttempts = 100

// EventSink receives room lifecycle notifications. Implementations must not
// block for long; the registry calls them outside its lock.
type EventSink interface {
	RoomCreated(room domain.Room)
	RoomJoined(room domain.Room)
	MemberLeft(room domain.Room)
	RoomExpired(room domain.Room)
}

type noopSink struct{}

func (noopSink) RoomCreated(domain.Room) {}
func (noopSink) RoomJoined(domain.Room)  {}
func (noopSink) MemberLeft(domain.Room)  {}
func (noopSink) RoomExpired(domain.Room) {}

type roomMeta struct {
	createdAt    time.Time
	lastActivity time.Time
}

// Registry owns all room state: the metadata table and the membership table.
// Metadata outlives an empty membership set so a room code stays joinable
// until the expiry sweep reclaims it. Every mutation happens under one lock;
// operations on the same code are serialized, which also gives broadcasts
// their per-room total order.
type Registry struct {
	mu      sync.RWMutex
	meta    map[string]*roomMeta
	members map[string]map[*Client]struct{}

	now    func() time.Time
	logger *zap.SugaredLogger
	sink   EventSink
}

func NewRegistry(logger *zap.SugaredLogger, sink EventSink) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if sink == nil {
		sink = noopSink{}
	}

	return &Registry{
		meta:    make(map[string]*roomMeta),
		members: make(map[string]map[*Client]struct{}),
		now:     time.Now,
		logger:  logger,
		sink:    sink,
	}
}

// CreateRoom ensures a room exists for the requested code (generating a fresh
// one when absent), adds the connection as a member and acks it with a
// room-created event. Creating over an existing code adopts that room and
// resets both timestamps; re-creating by a current member leaves the
// membership untouched.
func (r *Registry) CreateRoom(requestedCode string, c *Client) (string, int, error) {
	code := domain.NormalizeCode(requestedCode)

	r.mu.Lock()

	if code == "" {
		generated, err := r.generateCodeLocked()
		if err != nil {
			r.mu.Unlock()
			return "", 0, err
		}
		code = generated
	}

	now := r.now()
	r.meta[code] = &roomMeta{createdAt: now, lastActivity: now}

	set := r.ensureMembersLocked(code)
	_, already := set[c]
	if !already {
		r.detachLocked(c)
		set[c] = struct{}{}
		c.room = code
	}
	count := len(set)

	c.trySend(NewRoomCreated(code, count))

	// An adopting create grows the room, so the members that were already
	// there learn the fresh count. The creator's ack carries it.
	if !already && count > 1 {
		r.broadcastUserCountExceptLocked(code, count, c)
	}

	metrics.RoomsCreated.Inc()
	metrics.RoomsActive.Set(float64(len(r.meta)))
	snapshot := r.snapshotLocked(code)

	r.mu.Unlock()

	r.logger.Debugw("room created", "code", code, "members", count)
	r.sink.RoomCreated(snapshot)

	return code, count, nil
}

// JoinRoom adds the connection to an existing room. The joiner is acked with
// joined-room, then every member (joiner included) receives the fresh count.
func (r *Registry) JoinRoom(code string, c *Client) (int, error) {
	code = domain.NormalizeCode(code)

	r.mu.Lock()

	m, hasMeta := r.meta[code]
	_, hasMembers := r.members[code]
	if !hasMeta && !hasMembers {
		r.mu.Unlock()
		return 0, domain.ErrRoomNotFound
	}

	now := r.now()
	if hasMeta {
		m.lastActivity = now
	} else {
		r.meta[code] = &roomMeta{createdAt: now, lastActivity: now}
	}

	r.detachLocked(c)
	set := r.ensureMembersLocked(code)
	set[c] = struct{}{}
	c.room = code
	count := len(set)

	c.trySend(NewJoinedRoom(code))
	r.broadcastUserCountLocked(code, count)
	snapshot := r.snapshotLocked(code)

	r.mu.Unlock()

	r.sink.RoomJoined(snapshot)

	return count, nil
}

// Leave removes the connection from its bound room, notifies the remaining
// members and closes the connection's send channel. Room metadata is retained
// for the expiry window so occupants can reconnect.
func (r *Registry) Leave(c *Client) {
	r.mu.Lock()

	code := c.room
	r.detachLocked(c)

	if !c.closed {
		c.closed = true
		close(c.send)
	}

	var snapshot domain.Room
	if code != "" {
		snapshot = r.snapshotLocked(code)
	}

	r.mu.Unlock()

	if code != "" {
		r.sink.MemberLeft(snapshot)
	}
}

// TouchActivity refreshes a room's activity timestamp.
func (r *Registry) TouchActivity(code string) {
	code = domain.NormalizeCode(code)

	r.mu.Lock()
	if m, ok := r.meta[code]; ok {
		m.lastActivity = r.now()
	}
	r.mu.Unlock()
}

// Room returns a snapshot of a single room.
func (r *Registry) Room(code string) (domain.Room, error) {
	code = domain.NormalizeCode(code)

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, hasMeta := r.meta[code]
	_, hasMembers := r.members[code]
	if !hasMeta && !hasMembers {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	return r.snapshotLocked(code), nil
}

// Rooms returns a snapshot of every tracked room.
func (r *Registry) Rooms() []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(r.meta))
	for code := range r.meta {
		rooms = append(rooms, r.snapshotLocked(code))
	}

	return rooms
}

// detachLocked unbinds the connection from its current room, if any. Remaining
// members get a fresh count; an emptied membership set is dropped while the
// metadata entry stays behind for the sweeper.
func (r *Registry) detachLocked(c *Client) {
	code := c.room
	if code == "" {
		return
	}

	if set, ok := r.members[code]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.members, code)
		} else {
			r.broadcastUserCountLocked(code, len(set))
		}
	}

	c.room = ""
}

func (r *Registry) ensureMembersLocked(code string) map[*Client]struct{} {
	set, ok := r.members[code]
	if !ok {
		set = make(map[*Client]struct{})
		r.members[code] = set
	}
	return set
}

// generateCodeLocked draws codes until one is free in both tables. There is no
// reservation step: a concurrent explicit-code create can still adopt the same
// code afterwards, which merges the two parties into one room.
func (r *Registry) generateCodeLocked() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := domain.GenerateCode()
		if err != nil {
			return "", err
		}
		if _, ok := r.meta[code]; ok {
			continue
		}
		if _, ok := r.members[code]; ok {
			continue
		}
		return code, nil
	}

	return "", domain.ErrNoAvailableCodes
}

func (r *Registry) snapshotLocked(code string) domain.Room {
	room := domain.Room{
		Code:        code,
		MemberCount: len(r.members[code]),
	}
	if m, ok := r.meta[code]; ok {
		room.CreatedAt = m.createdAt
		room.LastActivityAt = m.lastActivity
	}
	return room
}
