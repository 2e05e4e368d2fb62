package events

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/logging"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Stream serves the hub over websockets, one JSON message per event.
type Stream struct {
	hub      *Hub
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// NewStream returns a Stream accepting connections from origins; an empty
// list accepts any origin.
func NewStream(hub *Hub, origins []string) *Stream {
	return &Stream{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(origins) == 0 || origin == "" {
					return true
				}
				for _, o := range origins {
					if o == "*" || strings.EqualFold(o, origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

// ServeHTTP upgrades the request and streams events until either side
// closes.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", logging.Fields{"error": err.Error(), constants.LogFieldAddr: r.RemoteAddr})
		return
	}
	sub := s.hub.Subscribe()
	logging.Debug("event stream opened", logging.Fields{constants.LogFieldAddr: r.RemoteAddr})

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		readLoop(conn, done)
	}()
	writeLoop(conn, sub, done)
	sub.Unsubscribe()
	conn.Close()
	logging.Debug("event stream closed", logging.Fields{constants.LogFieldAddr: r.RemoteAddr, "dropped": sub.Dropped()})
}

// Wait blocks until every connection reader has exited.
func (s *Stream) Wait() {
	s.wg.Wait()
}

// readLoop consumes control frames and reports when the peer goes away.
func readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("event stream read error", logging.Fields{"error": err.Error()})
			}
			return
		}
	}
}

func writeLoop(conn *websocket.Conn, sub *Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
