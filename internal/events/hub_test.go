package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPublishFanOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	defer a.Unsubscribe()
	defer b.Unsubscribe()

	h.Publish(Event{Kind: KindNPC, Action: ActionCreated, Game: "harbor", ID: "n1"})
	for _, s := range []*Subscription{a, b} {
		select {
		case ev := <-s.C():
			assert.Equal(t, "n1", ev.ID)
			assert.False(t, ev.At.IsZero())
		case <-time.After(time.Second):
			t.Fatalf("event not delivered")
		}
	}
}

func TestSlowSubscriberDrops(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(Event{Kind: KindAsset, Action: ActionUpdated})
	}
	assert.Equal(t, uint64(10), s.Dropped())
	assert.Len(t, s.C(), subscriberBuffer)
}

func TestUnsubscribeAndClose(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	s.Unsubscribe()
	s.Unsubscribe()
	_, ok := <-s.C()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len())

	other := h.Subscribe()
	h.Close()
	_, ok = <-other.C()
	assert.False(t, ok)

	late := h.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok)
	h.Publish(Event{Kind: KindGame})
}

func TestNilHubPublish(t *testing.T) {
	var h *Hub
	h.Publish(Event{Kind: KindGame})
}

func TestStreamDeliversJSON(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub()
	stream := NewStream(h, nil)
	srv := httptest.NewServer(stream)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)
	h.Publish(Event{Kind: KindGame, Action: ActionDeleted, Game: "harbor"})

	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, KindGame, ev.Kind)
	assert.Equal(t, "harbor", ev.Game)

	conn.Close()
	require.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	h.Close()
	srv.Close()
	stream.Wait()
}

func TestStreamRejectsForeignOrigin(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(NewStream(h, []string{"https://dash.example"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
