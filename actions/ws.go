package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

// WebSocket sends one message and waits for one reply for
// "ws.request".
//
// Parameters: url (required) and message.  A message that isn't a
// string is sent as JSON.  A reply that parses as JSON is returned
// parsed.  Otherwise it's returned as a string.
type WebSocket struct {
	Dialer *websocket.Dialer
}

func (w *WebSocket) Request(ctx context.Context, x interface{}) (interface{}, error) {
	m, err := params("ws.request", x)
	if err != nil {
		return nil, err
	}
	u, err := stringParam("ws.request", m, "url")
	if err != nil {
		return nil, err
	}

	var msg []byte
	switch vv := m["message"].(type) {
	case string:
		msg = []byte(vv)
	default:
		if msg, err = json.Marshal(vv); err != nil {
			return nil, err
		}
	}

	conn, _, err := w.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("ws.request: %w", err)
	}
	defer conn.Close()

	if deadline, have := ctx.Deadline(); have {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err = conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return nil, fmt.Errorf("ws.request: %w", err)
	}

	_, bs, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ws.request: %w", err)
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	var reply interface{}
	if err := json.Unmarshal(bs, &reply); err != nil {
		return string(bs), nil
	}
	return reply, nil
}
