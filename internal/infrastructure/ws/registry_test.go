package ws

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hilthontt/huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop().Sugar(), nil)
}

func newTestClient(r *Registry) *Client {
	return &Client{
		send:     make(chan any, sendBufferSize),
		ID:       uuid.NewString(),
		registry: r,
		logger:   zap.NewNop().Sugar(),
	}
}

// drain empties the client's send buffer and returns everything queued so far.
func drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestCreateRoomGeneratesCode(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	code, count, err := r.CreateRoom("", c)
	require.NoError(t, err)

	assert.Len(t, code, domain.CodeLength)
	for _, ch := range code {
		assert.True(t, strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", ch), "unexpected character %q in code", ch)
	}
	assert.Equal(t, 1, count)

	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewRoomCreated(code, 1), msgs[0])
}

func TestCreateRoomNormalizesExplicitCode(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	code, count, err := r.CreateRoom("  ab12cd ", c)
	require.NoError(t, err)

	assert.Equal(t, "AB12CD", code)
	assert.Equal(t, 1, count)
}

func TestCreateRoomAdoptsExistingCode(t *testing.T) {
	r := newTestRegistry()
	first := newTestClient(r)
	second := newTestClient(r)

	_, _, err := r.CreateRoom("AB12CD", first)
	require.NoError(t, err)

	code, count, err := r.CreateRoom("AB12CD", second)
	require.NoError(t, err)

	assert.Equal(t, "AB12CD", code)
	assert.Equal(t, 2, count)

	msgs := drain(second)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewRoomCreated("AB12CD", 2), msgs[0])
}

func TestRecreateOwnRoomKeepsCountAccurate(t *testing.T) {
	r := newTestRegistry()
	x := newTestClient(r)
	y := newTestClient(r)

	_, _, err := r.CreateRoom("AB12CD", x)
	require.NoError(t, err)
	_, err = r.JoinRoom("AB12CD", y)
	require.NoError(t, err)
	drain(x)
	drain(y)

	code, count, err := r.CreateRoom("AB12CD", x)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", code)
	assert.Equal(t, 2, count)

	xMsgs := drain(x)
	require.Len(t, xMsgs, 1)
	assert.Equal(t, NewRoomCreated("AB12CD", 2), xMsgs[0])

	// The other member must never see a count below the real membership.
	for _, msg := range drain(y) {
		if uc, ok := msg.(UserCountPayload); ok {
			assert.Equal(t, 2, uc.UserCount)
		}
	}

	room, err := r.Room("AB12CD")
	require.NoError(t, err)
	assert.Equal(t, 2, room.MemberCount)
}

func TestCreateRoomAdoptNotifiesExistingMembers(t *testing.T) {
	r := newTestRegistry()
	first := newTestClient(r)
	second := newTestClient(r)

	_, _, err := r.CreateRoom("AB12CD", first)
	require.NoError(t, err)
	drain(first)

	_, _, err = r.CreateRoom("AB12CD", second)
	require.NoError(t, err)

	msgs := drain(first)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewUserCount(2), msgs[0])
}

func TestJoinRoomNotFound(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	_, err := r.JoinRoom("ZZZZZZ", c)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Empty(t, drain(c))
}

func TestJoinRoomIsCaseInsensitive(t *testing.T) {
	r := newTestRegistry()
	creator := newTestClient(r)
	joiner := newTestClient(r)

	_, _, err := r.CreateRoom("AB12CD", creator)
	require.NoError(t, err)
	drain(creator)

	count, err := r.JoinRoom("ab12cd", joiner)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	joinerMsgs := drain(joiner)
	require.Len(t, joinerMsgs, 2)
	assert.Equal(t, NewJoinedRoom("AB12CD"), joinerMsgs[0])
	assert.Equal(t, NewUserCount(2), joinerMsgs[1])

	creatorMsgs := drain(creator)
	require.Len(t, creatorMsgs, 1)
	assert.Equal(t, NewUserCount(2), creatorMsgs[0])
}

func TestLeaveRetainsRoomMetadata(t *testing.T) {
	r := newTestRegistry()
	creator := newTestClient(r)

	code, _, err := r.CreateRoom("", creator)
	require.NoError(t, err)

	r.Leave(creator)

	room, err := r.Room(code)
	require.NoError(t, err)
	assert.Equal(t, 0, room.MemberCount)

	// The code is still joinable until the sweeper reclaims it.
	joiner := newTestClient(r)
	count, err := r.JoinRoom(code, joiner)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLeaveClosesSendChannel(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	_, _, err := r.CreateRoom("", c)
	require.NoError(t, err)

	r.Leave(c)

	// Drain queued messages, then the closed channel yields !ok.
	for {
		_, ok := <-c.send
		if !ok {
			break
		}
	}

	// A second Leave must not close the channel again.
	r.Leave(c)
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	r := newTestRegistry()
	creator := newTestClient(r)
	joiner := newTestClient(r)

	code, _, err := r.CreateRoom("", creator)
	require.NoError(t, err)

	_, err = r.JoinRoom(code, joiner)
	require.NoError(t, err)
	drain(creator)

	r.Leave(joiner)

	msgs := drain(creator)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewUserCount(1), msgs[0])
}

func TestSwitchingRoomsDetachesFromPrevious(t *testing.T) {
	r := newTestRegistry()
	mover := newTestClient(r)
	stayer := newTestClient(r)

	_, _, err := r.CreateRoom("AAAAAA", stayer)
	require.NoError(t, err)

	_, err = r.JoinRoom("AAAAAA", mover)
	require.NoError(t, err)
	drain(stayer)

	_, _, err = r.CreateRoom("BBBBBB", mover)
	require.NoError(t, err)

	roomA, err := r.Room("AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, 1, roomA.MemberCount)

	msgs := drain(stayer)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewUserCount(1), msgs[0])
}

func TestTouchActivityRefreshesTimestamp(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	code, _, err := r.CreateRoom("", c)
	require.NoError(t, err)

	before, err := r.Room(code)
	require.NoError(t, err)

	clock := newFakeClock(before.LastActivityAt)
	r.now = clock.Now
	clock.Advance(1)

	r.TouchActivity(code)

	after, err := r.Room(code)
	require.NoError(t, err)
	assert.True(t, after.LastActivityAt.After(before.LastActivityAt))
}

func TestConcurrentJoins(t *testing.T) {
	r := newTestRegistry()
	creator := newTestClient(r)

	code, _, err := r.CreateRoom("", creator)
	require.NoError(t, err)

	const joiners = 32

	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient(r)
			_, err := r.JoinRoom(code, c)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	room, err := r.Room(code)
	require.NoError(t, err)
	assert.Equal(t, joiners+1, room.MemberCount)
}

func TestRoomsListsAllTracked(t *testing.T) {
	r := newTestRegistry()

	for _, code := range []string{"AAAAAA", "BBBBBB", "CCCCCC"} {
		_, _, err := r.CreateRoom(code, newTestClient(r))
		require.NoError(t, err)
	}

	rooms := r.Rooms()
	assert.Len(t, rooms, 3)
}
