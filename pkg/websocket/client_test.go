package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer upgrades every request and records the frames it receives
type testServer struct {
	*httptest.Server
	received chan Message
	tokens   chan string
	closed   chan struct{}

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		received: make(chan Message, 32),
		tokens:   make(chan string, 8),
		closed:   make(chan struct{}, 8),
	}
	upgrader := websocket.Upgrader{}

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.tokens <- r.URL.Query().Get("token")
		ts.mu.Lock()
		ts.conns = append(ts.conns, conn)
		ts.mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				select {
				case ts.closed <- struct{}{}:
				default:
				}
				return
			}
			var msg Message
			if json.Unmarshal(data, &msg) == nil && msg.Type != MessageTypeHeartbeat {
				ts.received <- msg
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) push(t *testing.T, msgType MessageType, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(Message{Type: msgType, Payload: raw})
	require.NoError(t, err)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	require.NotEmpty(t, ts.conns)
	require.NoError(t, ts.conns[len(ts.conns)-1].WriteMessage(websocket.TextMessage, data))
}

func (ts *testServer) dropConnections() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, conn := range ts.conns {
		conn.Close()
	}
}

func (ts *testServer) next(t *testing.T) Message {
	t.Helper()
	select {
	case msg := <-ts.received:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Message{}
	}
}

func testConfig(url string) Config {
	cfg := DefaultConfig(url)
	cfg.ReconnectBaseDelay = 10 * time.Millisecond
	cfg.ReconnectMaxDelay = 20 * time.Millisecond
	cfg.HeartbeatInterval = 0
	return cfg
}

func userIDOf(t *testing.T, msg Message) int64 {
	t.Helper()
	var p statusPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	return p.UserID
}

func TestNewClient(t *testing.T) {
	client := NewClient(DefaultConfig("ws://localhost:8080/api/v1/ws"))

	assert.Equal(t, StateDisconnected, client.State())
	assert.False(t, client.IsConnected())
	assert.Empty(t, client.listeners)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("ws://example.com/ws")

	assert.Equal(t, "ws://example.com/ws", cfg.URL)
	assert.Equal(t, 15*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, -1, cfg.MaxReconnectAttempts)
}

func TestConnect_SendsToken(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	defer client.Disconnect()

	require.NoError(t, client.Connect(context.Background(), "jwt-123"))

	assert.True(t, client.IsConnected())
	assert.Equal(t, "jwt-123", <-ts.tokens)
}

func TestConnect_Failure(t *testing.T) {
	client := NewClient(testConfig("ws://127.0.0.1:1/ws"))

	err := client.Connect(context.Background(), "")

	assert.Error(t, err)
	assert.Equal(t, StateError, client.State())
	assert.NotEmpty(t, client.GetStats().LastError)
}

func TestConnect_Twice_ClosesPreviousConnection(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	defer client.Disconnect()

	require.NoError(t, client.Connect(context.Background(), "first"))
	assert.Equal(t, "first", <-ts.tokens)
	require.NoError(t, client.Connect(context.Background(), "second"))
	assert.Equal(t, "second", <-ts.tokens)

	select {
	case <-ts.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("first connection was never closed")
	}

	time.Sleep(50 * time.Millisecond)
	assert.True(t, client.IsConnected())
	assert.Zero(t, client.GetStats().ReconnectCount)
	assert.Empty(t, ts.tokens)
}

func TestSubscribeToUserStatus(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	defer client.Disconnect()
	require.NoError(t, client.Connect(context.Background(), "tok"))

	statuses := make(chan api.PresenceStatus, 4)
	unsubscribe := client.SubscribeToUserStatus(42, func(s api.PresenceStatus) { statuses <- s })

	msg := ts.next(t)
	assert.Equal(t, MessageTypeSubscribeStatus, msg.Type)
	assert.Equal(t, int64(42), userIDOf(t, msg))

	ts.push(t, MessageTypePresenceUpdate, PresenceUpdate{UserID: 7, Status: api.StatusOnline})
	ts.push(t, MessageTypePresenceUpdate, PresenceUpdate{UserID: 42, Status: api.StatusOffline})

	select {
	case s := <-statuses:
		assert.Equal(t, api.StatusOffline, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no presence update delivered")
	}

	unsubscribe()
	unsubscribe()

	msg = ts.next(t)
	assert.Equal(t, MessageTypeUnsubscribeStatus, msg.Type)
	assert.Equal(t, int64(42), userIDOf(t, msg))

	ts.push(t, MessageTypePresenceUpdate, PresenceUpdate{UserID: 42, Status: api.StatusOnline})
	select {
	case s := <-statuses:
		t.Fatalf("unexpected delivery after unsubscribe: %s", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeToUserStatus_SharedUser(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	defer client.Disconnect()
	require.NoError(t, client.Connect(context.Background(), "tok"))

	first := client.SubscribeToUserStatus(5, func(api.PresenceStatus) {})
	second := client.SubscribeToUserStatus(5, func(api.PresenceStatus) {})
	assert.Equal(t, MessageTypeSubscribeStatus, ts.next(t).Type)

	first()
	second()
	assert.Equal(t, MessageTypeUnsubscribeStatus, ts.next(t).Type)

	select {
	case msg := <-ts.received:
		t.Fatalf("unexpected frame %s", msg.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOn_Listeners(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	defer client.Disconnect()
	require.NoError(t, client.Connect(context.Background(), "tok"))

	typed := make(chan json.RawMessage, 1)
	all := make(chan json.RawMessage, 4)
	unsubscribe := client.On(MessageTypeNewMessage, func(p json.RawMessage) { typed <- p })
	client.On("", func(p json.RawMessage) { all <- p })

	ts.push(t, MessageTypeNewMessage, api.Message{ID: 1, Content: "hey"})

	select {
	case p := <-typed:
		var m api.Message
		require.NoError(t, json.Unmarshal(p, &m))
		assert.Equal(t, "hey", m.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("typed listener not called")
	}

	unsubscribe()
	ts.push(t, MessageTypeNewMessage, api.Message{ID: 2})

	assert.Eventually(t, func() bool { return len(all) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, typed)
	assert.Equal(t, int64(2), client.GetStats().MessagesReceived)
}

func TestReconnect_ResubscribesAndNotifies(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	defer client.Disconnect()

	var mu sync.Mutex
	var states []bool
	client.OnStateChange(func(connected bool) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, connected)
	})

	require.NoError(t, client.Connect(context.Background(), "tok"))
	client.SubscribeToUserStatus(42, func(api.PresenceStatus) {})
	assert.Equal(t, MessageTypeSubscribeStatus, ts.next(t).Type)

	ts.dropConnections()

	msg := ts.next(t)
	assert.Equal(t, MessageTypeSubscribeStatus, msg.Type)
	assert.Equal(t, int64(42), userIDOf(t, msg))
	assert.Eventually(t, client.IsConnected, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, client.GetStats().ReconnectCount)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false, true}, states)
}

func TestDisconnect(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(testConfig(ts.url()))
	require.NoError(t, client.Connect(context.Background(), "tok"))

	require.NoError(t, client.Disconnect())

	assert.Equal(t, StateDisconnected, client.State())
	assert.Error(t, client.Send(MessageTypeHeartbeat, nil))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "unknown", ConnectionState(99).String())
}
