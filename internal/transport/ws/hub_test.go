package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConn(h *Hub, surveyID string) *Connection {
	conn := &Connection{SurveyID: surveyID, OwnerID: "owner_1", Send: make(chan []byte, 8), Hub: h}
	h.Register(conn)
	return conn
}

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHubBroadcastReachesOnlyThatSurvey(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Stop()

	a1 := newConn(h, "survey-a")
	a2 := newConn(h, "survey-a")
	b := newConn(h, "survey-b")
	assert.Eventually(t, func() bool { return h.Connections("survey-a") == 2 }, time.Second, 5*time.Millisecond)

	h.BroadcastToSurvey("survey-a", string(MsgSubmissionRecorded), map[string]int{"totalScore": 7})

	for _, conn := range []*Connection{a1, a2} {
		msg := receive(t, conn)
		assert.Equal(t, MsgSubmissionRecorded, msg.Type)
		assert.JSONEq(t, `{"totalScore":7}`, string(msg.Payload))
	}
	select {
	case <-b.Send:
		t.Fatal("other survey received the broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSendToTargetsOneConnection(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Stop()

	first := newConn(h, "survey-a")
	second := newConn(h, "survey-a")

	h.SendTo(second, MsgSnapshot, map[string]int{"count": 3})

	assert.Equal(t, MsgSnapshot, receive(t, second).Type)
	assert.Empty(t, first.Send)
}

func TestHubDisconnectSurvey(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Stop()

	conn := newConn(h, "survey-a")
	other := newConn(h, "survey-b")

	h.DisconnectSurvey("survey-a")

	assert.Equal(t, MsgSurveyDeleted, receive(t, conn).Type)
	_, ok := <-conn.Send
	assert.False(t, ok, "send channel should be closed")
	assert.Eventually(t, func() bool { return h.Connections("survey-a") == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.Connections("survey-b"))

	// unregistering an already removed connection is a no-op
	h.Unregister(conn)
	h.Unregister(other)
	assert.Eventually(t, func() bool { return h.Connections("survey-b") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopClosesConnections(t *testing.T) {
	h := NewHub(zap.NewNop())
	conn := newConn(h, "survey-a")

	h.Stop()
	h.Stop()

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on stop")
	}

	late := &Connection{SurveyID: "survey-a", Send: make(chan []byte, 1)}
	h.Register(late)
	_, ok := <-late.Send
	assert.False(t, ok)
}
