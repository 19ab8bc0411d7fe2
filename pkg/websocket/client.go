package websocket

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/logger"
	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribeStatus   MessageType = "subscribe_status"
	MessageTypeUnsubscribeStatus MessageType = "unsubscribe_status"
	MessageTypePresenceUpdate    MessageType = "presence_update"
	MessageTypeNewMessage        MessageType = "new_message"
	MessageTypeNotification      MessageType = "notification"
	MessageTypeHeartbeat         MessageType = "heartbeat"
	MessageTypePong              MessageType = "pong"
	MessageTypeError             MessageType = "error"
)

// Message is the frame exchanged with the server
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type statusPayload struct {
	UserID int64 `json:"user_id"`
}

// PresenceUpdate is the payload of a presence_update push
type PresenceUpdate struct {
	UserID int64              `json:"user_id"`
	Status api.PresenceStatus `json:"status"`
}

// Config holds WebSocket client configuration
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative means unlimited
}

// DefaultConfig returns the configuration for url
func DefaultConfig(url string) Config {
	return Config{
		URL:                  url,
		ConnectTimeout:       15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

// Client manages the real-time connection: presence subscriptions plus
// generic message listeners, with heartbeat and reconnect.
type Client struct {
	config Config
	state  atomic.Value // ConnectionState

	mu         sync.RWMutex
	conn       *websocket.Conn
	token      string
	ctx        context.Context
	cancel     context.CancelFunc
	connCancel context.CancelFunc

	writeMu sync.Mutex

	listenersMu    sync.RWMutex
	nextID         int
	listeners      map[MessageType]map[int]func(json.RawMessage)
	statusSubs     map[int64]map[int]func(api.PresenceStatus)
	stateListeners map[int]func(bool)

	statsLock sync.RWMutex
	stats     ConnectionStats
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	c := &Client{
		config:         config,
		listeners:      make(map[MessageType]map[int]func(json.RawMessage)),
		statusSubs:     make(map[int64]map[int]func(api.PresenceStatus)),
		stateListeners: make(map[int]func(bool)),
	}
	c.state.Store(StateDisconnected)
	return c
}

// SetAuthToken sets the JWT sent when dialing
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Connect establishes the connection and starts the read and heartbeat loops.
// A connection left from an earlier Connect is closed first.
func (c *Client) Connect(ctx context.Context, token string) error {
	c.SetAuthToken(token)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.connCancel != nil {
		c.connCancel()
		c.connCancel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.mu.Unlock()

	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return err
	}

	c.attach(conn)
	logger.Debug("WebSocket connected", "url", c.config.URL)
	return nil
}

// Disconnect closes the connection and stops reconnecting
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.connCancel != nil {
		c.connCancel()
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateDisconnected)
	c.recordDisconnected()

	logger.Debug("WebSocket disconnected")
	return nil
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.getState() == StateConnected
}

// State returns the current connection state
func (c *Client) State() ConnectionState {
	return c.getState()
}

// On subscribes to a message type; the empty type receives every message
func (c *Client) On(msgType MessageType, callback func(json.RawMessage)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextID
	c.nextID++
	if c.listeners[msgType] == nil {
		c.listeners[msgType] = make(map[int]func(json.RawMessage))
	}
	c.listeners[msgType][id] = callback

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners[msgType], id)
	}
}

// OnStateChange calls fn with the connected flag whenever it flips
func (c *Client) OnStateChange(fn func(connected bool)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextID
	c.nextID++
	c.stateListeners[id] = fn

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.stateListeners, id)
	}
}

// SubscribeToUserStatus registers callback for presence pushes about userID.
// The server is asked for updates on the first subscription to a user and
// told to stop after the last one goes away.
func (c *Client) SubscribeToUserStatus(userID int64, callback func(api.PresenceStatus)) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	subs := c.statusSubs[userID]
	first := len(subs) == 0
	if subs == nil {
		subs = make(map[int]func(api.PresenceStatus))
		c.statusSubs[userID] = subs
	}
	subs[id] = callback
	c.listenersMu.Unlock()

	if first && c.IsConnected() {
		if err := c.Send(MessageTypeSubscribeStatus, statusPayload{UserID: userID}); err != nil {
			logger.Debug("Failed to subscribe to status", "user_id", userID, "error", err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.statusSubs[userID], id)
			last := len(c.statusSubs[userID]) == 0
			if last {
				delete(c.statusSubs, userID)
			}
			c.listenersMu.Unlock()

			if last && c.IsConnected() {
				if err := c.Send(MessageTypeUnsubscribeStatus, statusPayload{UserID: userID}); err != nil {
					logger.Debug("Failed to unsubscribe from status", "user_id", userID, "error", err)
				}
			}
		})
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

// attach installs a fresh connection, resubscribes presence and starts its loops
func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	connCtx, connCancel := context.WithCancel(c.ctx)
	c.connCancel = connCancel
	c.mu.Unlock()

	c.setState(StateConnected)
	c.recordConnected()

	c.listenersMu.RLock()
	userIDs := make([]int64, 0, len(c.statusSubs))
	for userID := range c.statusSubs {
		userIDs = append(userIDs, userID)
	}
	c.listenersMu.RUnlock()

	for _, userID := range userIDs {
		if err := c.Send(MessageTypeSubscribeStatus, statusPayload{UserID: userID}); err != nil {
			logger.Debug("Failed to resubscribe to status", "user_id", userID, "error", err)
		}
	}

	go c.readLoop(connCtx, conn)
	go c.heartbeatLoop(connCtx)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.recordError(err.Error())
			logger.Warn("WebSocket read error", "error", err)
			c.handleDisconnect(conn)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Dropping malformed WebSocket frame", "error", err)
			continue
		}

		c.recordMessageReceived()
		c.dispatch(msg)
	}
}

// dispatch runs callbacks on the read goroutine so pushes keep their order
func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	var callbacks []func(json.RawMessage)
	for _, cb := range c.listeners[msg.Type] {
		callbacks = append(callbacks, cb)
	}
	for _, cb := range c.listeners[""] {
		callbacks = append(callbacks, cb)
	}

	var statusCallbacks []func(api.PresenceStatus)
	var update PresenceUpdate
	if msg.Type == MessageTypePresenceUpdate {
		if err := json.Unmarshal(msg.Payload, &update); err != nil {
			logger.Debug("Malformed presence update", "error", err)
		} else {
			for _, cb := range c.statusSubs[update.UserID] {
				statusCallbacks = append(statusCallbacks, cb)
			}
		}
	}
	c.listenersMu.RUnlock()

	for _, cb := range callbacks {
		cb(msg.Payload)
	}
	for _, cb := range statusCallbacks {
		cb(update.Status)
	}
}

func (c *Client) heartbeatLoop(ctx context.Context) {
	if c.config.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

func (c *Client) handleDisconnect(dead *websocket.Conn) {
	c.mu.Lock()
	if c.conn == dead {
		c.conn = nil
	}
	dead.Close()
	if c.connCancel != nil {
		c.connCancel()
	}
	ctx := c.ctx
	c.mu.Unlock()

	c.setState(StateReconnecting)
	c.recordDisconnected()

	attempts := 0
	delay := c.config.ReconnectBaseDelay
	for {
		if c.config.MaxReconnectAttempts >= 0 && attempts >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			return
		}

		// Exponential backoff with up to 1s of jitter
		wait := delay + time.Duration(rand.Intn(1000))*time.Millisecond
		logger.Debug("Reconnecting WebSocket", "attempt", attempts+1, "wait_ms", wait.Milliseconds())

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		conn, err := c.dial(ctx)
		if err != nil {
			attempts++
			c.recordError(err.Error())
			delay *= 2
			if delay > c.config.ReconnectMaxDelay {
				delay = c.config.ReconnectMaxDelay
			}
			continue
		}

		c.statsLock.Lock()
		c.stats.ReconnectCount++
		c.statsLock.Unlock()

		c.attach(conn)
		logger.Debug("WebSocket reconnected")
		return
	}
}

func (c *Client) setState(state ConnectionState) {
	prev := c.state.Swap(state).(ConnectionState)
	wasConnected := prev == StateConnected
	isConnected := state == StateConnected
	if wasConnected == isConnected {
		return
	}

	c.listenersMu.RLock()
	fns := make([]func(bool), 0, len(c.stateListeners))
	for _, fn := range c.stateListeners {
		fns = append(fns, fn)
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(isConnected)
	}
}

func (c *Client) getState() ConnectionState {
	return c.state.Load().(ConnectionState)
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
