package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestExpireIdleReclaimsStaleEmptyRooms(t *testing.T) {
	r := newTestRegistry()
	clock := newFakeClock(time.Now())
	r.now = clock.Now

	c := newTestClient(r)
	code, _, err := r.CreateRoom("", c)
	require.NoError(t, err)
	r.Leave(c)

	clock.Advance(DefaultIdleExpiry + time.Minute)

	expired := r.expireIdle(DefaultIdleExpiry)
	require.Len(t, expired, 1)
	assert.Equal(t, code, expired[0].Code)

	_, err = r.Room(code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	// The reclaimed code is no longer joinable.
	_, err = r.JoinRoom(code, newTestClient(r))
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestExpireIdleNeverTouchesOccupiedRooms(t *testing.T) {
	r := newTestRegistry()
	clock := newFakeClock(time.Now())
	r.now = clock.Now

	c := newTestClient(r)
	code, _, err := r.CreateRoom("", c)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)

	expired := r.expireIdle(DefaultIdleExpiry)
	assert.Empty(t, expired)

	room, err := r.Room(code)
	require.NoError(t, err)
	assert.Equal(t, 1, room.MemberCount)
}

func TestExpireIdleKeepsRecentlyActiveRooms(t *testing.T) {
	r := newTestRegistry()
	clock := newFakeClock(time.Now())
	r.now = clock.Now

	c := newTestClient(r)
	code, _, err := r.CreateRoom("", c)
	require.NoError(t, err)
	r.Leave(c)

	clock.Advance(DefaultIdleExpiry - time.Minute)

	expired := r.expireIdle(DefaultIdleExpiry)
	assert.Empty(t, expired)

	_, err = r.Room(code)
	assert.NoError(t, err)
}

func TestExpireIdleRefreshedByChat(t *testing.T) {
	r := newTestRegistry()
	clock := newFakeClock(time.Now())
	r.now = clock.Now

	creator := newTestClient(r)
	code, _, err := r.CreateRoom("", creator)
	require.NoError(t, err)

	clock.Advance(DefaultIdleExpiry - time.Minute)

	_, err = r.BroadcastChat(code, "still here", "alice", creator)
	require.NoError(t, err)

	r.Leave(creator)
	clock.Advance(2 * time.Minute)

	expired := r.expireIdle(DefaultIdleExpiry)
	assert.Empty(t, expired)
}

func TestSweeperRunStop(t *testing.T) {
	r := newTestRegistry()
	s := NewSweeper(r, time.Millisecond, DefaultIdleExpiry, nil)

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
