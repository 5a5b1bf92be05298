package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event names on the wire. Payload keys are snake_case to match the REST
// surface.
const (
	EventAnnounce          = "announce"
	EventTyping            = "typing"
	EventStopTyping        = "stopTyping"
	EventNewMessage        = "newMessage"
	EventUserOnline        = "userOnline"
	EventUserOffline       = "userOffline"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
)

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// TypingForwarder receives typing signals read off client connections. The
// message delivery coordinator implements it; the gateway stays ignorant of
// how signals are routed.
type TypingForwarder interface {
	Typing(senderID, receiverID int, isTyping bool)
}

type Client struct {
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
	id      string // connection handle, one uuid per live socket
	userID  int    // authenticated identity from the upgrade token
}

// Gateway owns the live websocket connections and the presence registry,
// and exposes the two delivery primitives the rest of the system uses:
// SendToUser and Broadcast.
type Gateway struct {
	presence *Presence

	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	typing TypingForwarder
	logger *log.Logger
}

func NewGateway(presence *Presence) *Gateway {
	return &Gateway{
		presence:   presence,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log.New(os.Stdout, "[GATEWAY] ", log.LstdFlags),
	}
}

// SetTypingForwarder wires the coordinator in after construction; the
// coordinator itself is built with the gateway as its pusher, so one of the
// two links has to be late-bound.
func (g *Gateway) SetTypingForwarder(t TypingForwarder) {
	g.typing = t
}

func (g *Gateway) Run() {
	g.logger.Println("gateway started")
	for {
		select {
		case c := <-g.register:
			g.addClient(c)
		case c := <-g.unregister:
			g.removeClient(c)
		}
	}
}

func (g *Gateway) addClient(c *Client) {
	g.mu.Lock()
	g.clients[c.id] = c
	total := len(g.clients)
	g.mu.Unlock()
	g.logger.Printf("connection %s opened (user %d), total connections: %d", c.id, c.userID, total)
}

func (g *Gateway) removeClient(c *Client) {
	g.mu.Lock()
	if _, ok := g.clients[c.id]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c.id)
	close(c.send)
	remaining := len(g.clients)
	g.mu.Unlock()

	g.logger.Printf("connection %s closed, remaining connections: %d", c.id, remaining)

	// the offline notification fires only if the connection had announced
	if userID, ok := g.presence.Unregister(c.id); ok {
		g.Broadcast(EventUserOffline, map[string]any{"user_id": userID})
	}
}

// SendToUser pushes one event to the given user's live connection, if any.
// A missing or saturated connection is normal operation, not an error: the
// return value exists for logging and tests only.
func (g *Gateway) SendToUser(userID int, event string, payload any) bool {
	connID, ok := g.presence.Resolve(userID)
	if !ok {
		return false
	}

	data, err := json.Marshal(outEnvelope{Event: event, Payload: payload})
	if err != nil {
		g.logger.Printf("marshal %s event: %v", event, err)
		return false
	}

	// the read lock must cover the channel send: removeClient closes c.send
	// under the write lock, so a disconnect cannot land between lookup and send
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.clients[connID]
	if !ok {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		g.logger.Printf("connection %s send buffer full, dropping %s event", connID, event)
		return false
	}
}

// Broadcast pushes one event to every live connection.
func (g *Gateway) Broadcast(event string, payload any) {
	g.broadcastExcept("", event, payload)
}

func (g *Gateway) broadcastExcept(skipConnID, event string, payload any) {
	data, err := json.Marshal(outEnvelope{Event: event, Payload: payload})
	if err != nil {
		g.logger.Printf("marshal %s event: %v", event, err)
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for id, c := range g.clients {
		if id == skipConnID {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an authenticated request. The caller has already verified
// the token; userID is the identity it carried.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request, userID int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Printf("upgrade failed for user %d: %v", userID, err)
		return
	}

	client := &Client{
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, 256),
		id:      uuid.NewString(),
		userID:  userID,
	}
	g.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(300 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gateway.logger.Printf("connection %s read error: %v", c.id, err)
			}
			break
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.gateway.logger.Printf("connection %s bad frame: %v", c.id, err)
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env envelope) {
	g := c.gateway
	switch env.Event {
	case EventAnnounce:
		var p struct {
			UserID int `json:"user_id"`
		}
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		// the announced identity must match the token identity; anything
		// else (including an empty id) is ignored and the connection stays
		// up unregistered
		if p.UserID != c.userID {
			g.logger.Printf("connection %s announced user %d but authenticated as %d, ignoring", c.id, p.UserID, c.userID)
			return
		}
		if g.presence.Register(c.id, c.userID) {
			g.broadcastExcept(c.id, EventUserOnline, map[string]any{"user_id": c.userID})
		}

	case EventTyping, EventStopTyping:
		var p struct {
			ReceiverID int `json:"receiver_id"`
		}
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		if g.typing == nil {
			return
		}
		// the sender is always the authenticated user, never the payload
		g.typing.Typing(c.userID, p.ReceiverID, env.Event == EventTyping)

	default:
		g.logger.Printf("connection %s sent unknown event %q", c.id, env.Event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(240 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
