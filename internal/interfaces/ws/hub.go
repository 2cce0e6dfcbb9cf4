// Package ws pushes payment status changes to kiosk pages waiting on a
// checkout, so they do not have to poll /payment-status.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var errHubStopped = errors.New("status hub stopped")

type StatusUpdate struct {
	PaymentRequestID string               `json:"payment_request_id"`
	Status           domain.PaymentStatus `json:"status"`
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	requestID string
}

// Hub fans status updates out to the clients watching each payment request.
// All map access happens on the Run goroutine.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan StatusUpdate
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

var _ application.StatusNotifier = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan StatusUpdate, 64),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The kiosk page is served from the same origin; webhooks never
			// come through here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run owns the client registry until ctx is canceled. It must only be
// started once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, watchers := range h.clients {
				for client := range watchers {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			return

		case client := <-h.register:
			watchers, ok := h.clients[client.requestID]
			if !ok {
				watchers = make(map[*Client]struct{})
				h.clients[client.requestID] = watchers
			}
			watchers[client] = struct{}{}
			h.logger.Debug("status watcher registered", "payment_request_id", client.requestID)

		case client := <-h.unregister:
			h.remove(client)

		case update := <-h.broadcast:
			message, err := json.Marshal(update)
			if err != nil {
				h.logger.Error("failed to marshal status update", "error", err)
				continue
			}
			for client := range h.clients[update.PaymentRequestID] {
				select {
				case client.send <- message:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	watchers, ok := h.clients[client.requestID]
	if !ok {
		return
	}
	if _, ok := watchers[client]; !ok {
		return
	}
	delete(watchers, client)
	close(client.send)
	if len(watchers) == 0 {
		delete(h.clients, client.requestID)
	}
}

// PaymentStatusChanged queues an update without blocking the webhook path.
// Updates are dropped when the hub is saturated; pages still poll as a
// fallback.
func (h *Hub) PaymentStatusChanged(requestID string, status domain.PaymentStatus) {
	select {
	case h.broadcast <- StatusUpdate{PaymentRequestID: requestID, Status: status}:
	default:
		h.logger.Warn("status update dropped", "payment_request_id", requestID)
	}
}

// Serve upgrades the request and subscribes the connection to requestID.
// When initial is set it is sent as soon as the client is registered.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, requestID string, initial *StatusUpdate) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		requestID: requestID,
	}
	if initial != nil {
		if message, err := json.Marshal(initial); err == nil {
			client.send <- message
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only exists to notice the peer going away and to answer pongs.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("status watcher closed unexpectedly",
					"payment_request_id", c.requestID,
					"error", err)
			}
			return
		}
	}
}
