package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// MessageTypeNotification is the frame type for pushed notifications
const MessageTypeNotification = "notification"

// Message is the frame sent to connected clients
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time int64       `json:"time"`
}

type userMessage struct {
	userID  int64
	message Message
}

// Hub maintains the set of active clients and routes messages to them,
// keyed by user ID so a user with several open tabs receives every push.
type Hub struct {
	clients    map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	log        *logrus.Logger
	mutex      sync.RWMutex
}

// NewHub creates a new websocket hub
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userMessage, 256),
		log:        log,
	}
}

// Run starts the hub's main loop. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case um := <-h.broadcast:
			h.sendToUser(um.userID, um.message)
		}
	}
}

// PublishNotification pushes a notification payload to every connection the
// user has open. The send is best-effort and never blocks the caller: when
// the hub's queue is full the message is dropped and logged.
func (h *Hub) PublishNotification(userID int64, payload interface{}) {
	um := userMessage{
		userID: userID,
		message: Message{
			Type: MessageTypeNotification,
			Data: payload,
			Time: time.Now().Unix(),
		},
	}

	select {
	case h.broadcast <- um:
	default:
		h.log.WithField("user_id", userID).Warn("websocket broadcast queue full, dropping notification push")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.log.WithFields(logrus.Fields{
		"client_id": client.id,
		"user_id":   client.userID,
	}).Debug("websocket client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}
}

func (h *Hub) sendToUser(userID int64, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- message:
		default:
			// Slow client, let its write pump die and re-register.
			close(client.send)
			delete(h.clients[userID], client)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades an HTTP request to a websocket connection for the given user
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan Message, 64),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}
