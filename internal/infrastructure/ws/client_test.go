package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchAndDrain(t *testing.T, c *Client, raw string) []any {
	t.Helper()
	c.dispatch([]byte(raw))
	return drain(c)
}

func TestDispatchMalformedJSON(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{not json`)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewError("Invalid message"), msgs[0])
}

func TestDispatchWrongFieldType(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{"type":"join-room","roomId":42}`)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewError("Invalid message"), msgs[0])
}

func TestDispatchUnknownType(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{"type":"open-portal"}`)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewError("Unknown message type"), msgs[0])
}

func TestDispatchCreateRoom(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{"type":"create-room"}`)
	require.Len(t, msgs, 1)

	created, ok := msgs[0].(RoomCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, TypeRoomCreated, created.Type)
	assert.Len(t, created.RoomID, 6)
	assert.Equal(t, 1, created.UserCount)
}

func TestDispatchJoinRoomMissingID(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{"type":"join-room"}`)
	require.Len(t, msgs, 1)

	errPayload, ok := msgs[0].(ErrorPayload)
	require.True(t, ok)
	assert.Contains(t, errPayload.Message, "roomId")
}

func TestDispatchJoinRoomNotFound(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{"type":"join-room","roomId":"ZZZZZZ"}`)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewError("Room not found"), msgs[0])
}

func TestDispatchChatMessageMissingFields(t *testing.T) {
	r := newTestRegistry()

	testCases := []struct {
		name  string
		frame string
	}{
		{"missing roomId", `{"type":"chat-message","content":"hi","sender":"alice"}`},
		{"missing content", `{"type":"chat-message","roomId":"AB12CD","sender":"alice"}`},
		{"missing sender", `{"type":"chat-message","roomId":"AB12CD","content":"hi"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(r)

			msgs := dispatchAndDrain(t, c, tc.frame)
			require.Len(t, msgs, 1)

			_, ok := msgs[0].(ErrorPayload)
			assert.True(t, ok)
		})
	}
}

func TestDispatchChatMessageUnknownRoom(t *testing.T) {
	r := newTestRegistry()
	c := newTestClient(r)

	msgs := dispatchAndDrain(t, c, `{"type":"chat-message","roomId":"ZZZZZZ","content":"hi","sender":"alice"}`)
	require.Len(t, msgs, 1)
	assert.Equal(t, NewError("Room not found"), msgs[0])
}

func TestDispatchRoundTrip(t *testing.T) {
	r := newTestRegistry()
	creator := newTestClient(r)
	joiner := newTestClient(r)

	created := dispatchAndDrain(t, creator, `{"type":"create-room","roomId":"AB12CD"}`)
	require.Len(t, created, 1)

	joined := dispatchAndDrain(t, joiner, `{"type":"join-room","roomId":"ab12cd"}`)
	require.Len(t, joined, 2)
	assert.Equal(t, NewJoinedRoom("AB12CD"), joined[0])
	assert.Equal(t, NewUserCount(2), joined[1])

	// The creator sees the count change, then the chat tagged as not own.
	joiner.dispatch([]byte(`{"type":"chat-message","roomId":"AB12CD","content":"hi","sender":"bob"}`))

	creatorMsgs := drain(creator)
	require.Len(t, creatorMsgs, 2)
	assert.Equal(t, NewUserCount(2), creatorMsgs[0])
	assert.Equal(t, NewChat("hi", "bob", false), creatorMsgs[1])

	joinerMsgs := drain(joiner)
	require.Len(t, joinerMsgs, 1)
	assert.Equal(t, NewChat("hi", "bob", true), joinerMsgs[0])
}
