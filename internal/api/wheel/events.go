package wheel

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"prize_wheel/internal/api"
	dto "prize_wheel/internal/api/dto/wheel"
	"prize_wheel/internal/converter"
	"prize_wheel/pkg/resp"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
	pingEvery = readWait / 2
)

// Events streams the session's events over a websocket. The client may send
// commands on the same socket: {"action":"play"|"spin"|"collect"|"demo","slice":n}.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	events, unsubscribe, err := h.serv.Subscribe(r.Context(), sessionID)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("session_id", sessionID))
	log.Debug("event stream opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Replies to commands go through the writer so only it writes to conn
	replies := make(chan any, 8)

	writeErr := make(chan error, 1)
	go func() {
		ping := time.NewTicker(pingEvery)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case e, ok := <-events:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "event stream closed"), time.Now().Add(time.Second))
					writeErr <- nil
					return
				}
				if err := writeJSON(conn, converter.ToEvent(e)); err != nil {
					writeErr <- err
					return
				}
			case msg := <-replies:
				if err := writeJSON(conn, msg); err != nil {
					writeErr <- err
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var cmd dto.Command
		if err := jsoniter.Unmarshal(msg, &cmd); err != nil {
			h.reply(replies, dto.ErrorMessage{Type: "error", Error: "malformed command"})
			continue
		}
		if err := h.execute(r.Context(), sessionID, cmd); err != nil {
			h.reply(replies, dto.ErrorMessage{Type: "error", Action: cmd.Action, Error: err.Error()})
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	log.Debug("event stream closed")
}

func (h *Handler) execute(ctx context.Context, sessionID string, cmd dto.Command) error {
	switch cmd.Action {
	case "play":
		return h.serv.Play(ctx, sessionID)
	case "spin":
		return h.serv.Spin(ctx, sessionID)
	case "collect":
		return h.serv.Collect(ctx, sessionID)
	case "demo":
		return h.serv.Demo(ctx, sessionID, cmd.Slice)
	default:
		return errUnknownAction
	}
}

// Drops the reply when the writer is behind
func (h *Handler) reply(replies chan<- any, msg any) {
	select {
	case replies <- msg:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := resp.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
