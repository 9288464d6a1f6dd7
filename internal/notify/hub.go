package notify

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Event is one scheduling fact pushed to connected clients: a booking, a
// cancellation, a reschedule, a submission, feedback. Delivery is
// fire-and-forget; a slow or absent client never blocks the operation that
// produced the event.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProgramID  int64     `json:"program_id"`
	SessionID  int64     `json:"session_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     string    `json:"detail,omitempty"`

	recipients []int64
}

const (
	EventSessionBooked      = "session.booked"
	EventSessionCancelled   = "session.cancelled"
	EventSessionRescheduled = "session.rescheduled"
	EventSessionCompleted   = "session.completed"
	EventAttendeeRegistered = "session.attendee_registered"
	EventSubmissionReceived = "submission.received"
	EventFeedbackGiven      = "submission.feedback"
)

// NewEvent stamps an event with a fresh id and timestamp and the users it
// should reach.
func NewEvent(eventType string, programID, sessionID int64, detail string, recipients ...int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProgramID:  programID,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
		recipients: recipients,
	}
}

// Notifier is the sink services write events to.
type Notifier interface {
	Publish(event Event)
}

// Hub fans events out to websocket clients, keyed by user id. One goroutine
// owns the client map; everything else talks to it over channels.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan Event
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues an event for delivery, dropping it when the hub is
// saturated. Losing a notification is acceptable; stalling a booking is not.
func (h *Hub) Publish(event Event) {
	select {
	case h.events <- event:
	default:
		log.Printf("notify hub: dropping event %s (%s)", event.ID, event.Type)
	}
}

func (h *Hub) deliver(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify hub encode event: %v", err)
		return
	}
	for _, userID := range event.recipients {
		h.sendToUser(strconv.FormatInt(userID, 10), payload)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump drains the connection so pings and closes are processed. The feed
// is one-way; anything the client writes is discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
