package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// command is a frame sent by a client to manage room membership.
type command struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

type client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	remoteAddr   string
	writeTimeout time.Duration

	// rooms is owned by the hub goroutine.
	rooms map[string]struct{}
}

func newClient(h *Hub, conn *websocket.Conn, buffer int) *client {
	writeTimeout := viper.GetDuration("realtime.write_timeout")
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	return &client{
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, buffer),
		remoteAddr:   conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		rooms:        make(map[string]struct{}),
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Realtime client read failed", "remote_addr", c.remoteAddr, "error", err)
			}

			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.Room == "" {
			continue
		}

		var op roomOp
		switch cmd.Action {
		case "join":
			op = roomOp{client: c, room: cmd.Room, join: true}
		case "leave":
			op = roomOp{client: c, room: cmd.Room}
		default:
			continue
		}

		select {
		case c.hub.rooms <- op:
		case <-c.hub.done:
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))

				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
