package live

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialHub(t *testing.T, hub *Hub, userID int64) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.ServeWS(w, r, userID))
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// ServeWS registers the session before returning, but registration runs
	// on the server goroutine; wait for it to land.
	require.Eventually(t, func() bool {
		return hub.SessionCount(userID) == 1
	}, time.Second, 10*time.Millisecond)

	return conn
}

func TestPublishDeliversToConnectedSession(t *testing.T) {
	hub := NewHub(newTestLogger())
	conn := dialHub(t, hub, 42)

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome := hub.Publish(42, Message{
		Event: "new_post",
		Data: NewPostEvent{
			PostID:    7,
			Title:     "Hi",
			Author:    "bob",
			CreatedAt: createdAt,
		},
	})
	assert.Equal(t, DeliveredLive, outcome)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var received struct {
		Event string `json:"event"`
		Data  struct {
			PostID    int64     `json:"postId"`
			Title     string    `json:"title"`
			Author    string    `json:"author"`
			CreatedAt time.Time `json:"createdAt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &received))

	assert.Equal(t, "new_post", received.Event)
	assert.Equal(t, int64(7), received.Data.PostID)
	assert.Equal(t, "Hi", received.Data.Title)
	assert.Equal(t, "bob", received.Data.Author)
	assert.True(t, createdAt.Equal(received.Data.CreatedAt))
}

func TestPublishWithoutSessionReportsNoActiveSession(t *testing.T) {
	hub := NewHub(newTestLogger())

	outcome := hub.Publish(99, Message{Event: "new_post"})

	assert.Equal(t, NoActiveSession, outcome)
}

func TestPublishTargetsOnlyTheRecipientGroup(t *testing.T) {
	hub := NewHub(newTestLogger())
	aliceConn := dialHub(t, hub, 1)
	bobConn := dialHub(t, hub, 2)

	outcome := hub.Publish(1, Message{Event: "new_post"})
	assert.Equal(t, DeliveredLive, outcome)

	aliceConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	bobConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's event")
}

func TestDisconnectReleasesSession(t *testing.T) {
	hub := NewHub(newTestLogger())
	conn := dialHub(t, hub, 5)

	conn.Close()

	assert.Eventually(t, func() bool {
		return hub.SessionCount(5) == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, NoActiveSession, hub.Publish(5, Message{Event: "new_post"}))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "delivered-live", DeliveredLive.String())
	assert.Equal(t, "no-active-session", NoActiveSession.String())
}
