package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

// Events emitted by the order flow.
const (
	EventNewOrder           = "newOrder"
	EventOrdersCountUpdated = "ordersCountUpdated"
	EventOrderStatusUpdated = "orderStatusUpdated"
	EventNewMessage         = "newMessage"
	EventNotifyAdmin        = "notifyAdmin"
	EventNotifyUser         = "notifyUser"
	// EventJoined acknowledges a room join to the client that asked for it.
	EventJoined = "joined"
)

var ErrHubClosed = errors.New("realtime hub is closed")

// Envelope is the frame written to clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type outbound struct {
	room  string
	event string
	data  []byte
}

type roomOp struct {
	client *client
	room   string
	join   bool
}

// Hub fans events out to connected websocket clients. All client bookkeeping happens
// on the goroutine running Run.
type Hub struct {
	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	rooms      chan roomOp
	broadcast  chan outbound
	done       chan struct{}
	sendBuffer int
	metrics    *Metrics

	clients map[*client]struct{}
	members map[string]map[*client]struct{}
}

// option is a function that configures the Hub.
type option func(*Hub)

// WithMetrics sets the metrics the hub reports to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *Metrics) option {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithSendBuffer sets the per-client queue length. A client whose queue is full is dropped.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSendBuffer(n int) option {
	return func(h *Hub) {
		h.sendBuffer = n
	}
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(opts ...option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(viper.GetStringSlice("server.http.cors.allowed_origins")),
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		rooms:      make(chan roomOp),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		sendBuffer: viper.GetInt("realtime.send_buffer"),
		clients:    make(map[*client]struct{}),
		members:    make(map[string]map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = 32
	}

	return h
}

// Run serves hub operations until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			slog.Info("Realtime hub stopped")

			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.clientConnected()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case op := <-h.rooms:
			h.applyRoomOp(op)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(ctx context.Context, event string, payload any) error {
	return h.publish(ctx, "", event, payload)
}

// BroadcastToRoom sends an event to the clients that joined room.
func (h *Hub) BroadcastToRoom(ctx context.Context, room, event string, payload any) error {
	if room == "" {
		return errors.New("room is required")
	}

	return h.publish(ctx, room, event, payload)
}

func (h *Hub) publish(ctx context.Context, room, event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- outbound{room: room, event: event, data: data}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) deliver(msg outbound) {
	targets := h.clients
	if msg.room != "" {
		targets = h.members[msg.room]
	}

	for c := range targets {
		select {
		case c.send <- msg.data:
		default:
			slog.Warn("Dropping slow realtime client", "remote_addr", c.remoteAddr)
			h.drop(c)
		}
	}

	h.metrics.eventSent(msg.event)
}

func (h *Hub) applyRoomOp(op roomOp) {
	if _, ok := h.clients[op.client]; !ok {
		return
	}

	if op.join {
		if h.members[op.room] == nil {
			h.members[op.room] = make(map[*client]struct{})
		}
		h.members[op.room][op.client] = struct{}{}
		op.client.rooms[op.room] = struct{}{}

		if ack, err := json.Marshal(Envelope{Event: EventJoined, Data: map[string]string{"room": op.room}}); err == nil {
			select {
			case op.client.send <- ack:
			default:
			}
		}

		return
	}

	h.leave(op.client, op.room)
}

func (h *Hub) leave(c *client, room string) {
	delete(c.rooms, room)
	if m := h.members[room]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.members, room)
		}
	}
}

func (h *Hub) drop(c *client) {
	for room := range c.rooms {
		h.leave(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.clientDisconnected()
}

// ServeHTTP upgrades the request to a websocket and attaches the client to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "Websocket upgrade failed", "error", err)

		return
	}

	c := newClient(h, conn, h.sendBuffer)

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()

		return
	}

	go c.writePump()
	go c.readPump()
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}

		return false
	}
}
