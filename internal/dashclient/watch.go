package dashclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/events"
)

// WatchEvents streams change events to fn until ctx is cancelled or the
// connection drops. Cancellation returns ctx.Err().
func (c *Client) WatchEvents(ctx context.Context, fn func(events.Event)) error {
	u := c.endpoint(constants.RouteEvents, nil)
	u = "ws" + strings.TrimPrefix(u, "http")

	header := http.Header{}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return err
		}
		header.Set(constants.HeaderAuthorization, constants.BearerPrefix+tok.AccessToken)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Detail: err.Error()}
		}
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
			conn.Close()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		var ev events.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		fn(ev)
	}
}
