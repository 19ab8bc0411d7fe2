package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/auth"
	"github.com/athlink/cli/pkg/client"
	"github.com/athlink/cli/pkg/config"
	"github.com/athlink/cli/pkg/countdown"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/metrics"
	"github.com/athlink/cli/pkg/mutation"
	"github.com/athlink/cli/pkg/presence"
	"github.com/athlink/cli/pkg/query"
	"github.com/athlink/cli/pkg/search"
	"github.com/athlink/cli/pkg/store"
	"github.com/athlink/cli/pkg/websocket"
	json "github.com/json-iterator/go"
)

var timeNow = time.Now

// App owns every shared resource of a CLI run
type App struct {
	Settings config.Settings
	Metrics  *metrics.Metrics
	Client   *client.Client
	API      *api.API
	Cache    *query.Cache
	Session  *store.SessionStore
	Chat     *store.ChatStore
	Admin    *store.AdminDashboardStore
	Socket   *websocket.Client
	Recovery *auth.SessionRecovery

	mu        sync.Mutex
	closeOnce sync.Once
	unbind    []func()
}

// New wires the app. creds may be nil for a session that is never persisted.
func New(settings config.Settings, creds store.Persister) *App {
	m := metrics.New()
	c := client.New(client.Options{
		BaseURL:   settings.BaseURL,
		Timeout:   settings.Timeout,
		UserAgent: settings.UserAgent,
		Metrics:   m,
	})

	wsConfig := websocket.DefaultConfig(settings.WebSocketURL)
	if settings.HeartbeatInterval > 0 {
		wsConfig.HeartbeatInterval = settings.HeartbeatInterval
	}

	a := &App{
		Settings: settings,
		Metrics:  m,
		Client:   c,
		API:      api.New(c),
		Cache:    query.New(settings.CacheStaleTime, m),
		Session:  store.NewSessionStore(creds),
		Chat:     store.NewChatStore(),
		Admin:    store.NewAdminDashboardStore(),
		Socket:   websocket.NewClient(wsConfig),
	}
	a.Recovery = auth.NewSessionRecovery(a.API, a.Session, a.Client)

	a.unbind = append(a.unbind,
		a.Session.Subscribe(a.syncToken),
		a.Socket.On(websocket.MessageTypeNewMessage, a.onNewMessage),
	)
	return a
}

// syncToken keeps both transports on the session's token
func (a *App) syncToken(s *store.Session) {
	if s == nil {
		a.Client.ClearAuthToken()
		a.Socket.SetAuthToken("")
		return
	}
	a.Client.SetAuthToken(s.AccessToken)
	a.Socket.SetAuthToken(s.AccessToken)
}

func (a *App) onNewMessage(payload json.RawMessage) {
	var msg api.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Dropping malformed chat message", "error", err)
		return
	}
	a.Chat.AppendMessage(msg)
	a.Cache.Invalidate(query.MessagesKey(msg.ConversationID), query.ConversationsKey())
}

// Restore loads the persisted session and refreshes it when the access
// token has expired. It reports whether a usable session exists.
func (a *App) Restore(ctx context.Context) (bool, error) {
	ok, err := a.Session.Restore()
	if err != nil || !ok {
		return false, err
	}
	if a.Session.IsAuthenticated() {
		return true, nil
	}

	logger.Debug("Stored session expired, refreshing")
	if err := a.Recovery.RecoverSession(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// RequireSession restores the session or fails with an auth error
func (a *App) RequireSession(ctx context.Context) (api.User, error) {
	ok, err := a.Restore(ctx)
	if err != nil {
		return api.User{}, err
	}
	if !ok {
		return api.User{}, apierrors.AuthError("Not logged in. Run 'athlink-cli auth login' first")
	}
	user, _ := a.Session.User()
	return user, nil
}

// Login authenticates and stores the new session
func (a *App) Login(ctx context.Context, email, password string) (api.User, error) {
	resp, err := a.API.Login(ctx, email, password).Result()
	if err != nil {
		return api.User{}, err
	}
	if err := a.Session.Login(store.SessionFromLogin(resp, timeNow())); err != nil {
		return resp.User, fmt.Errorf("failed to save credentials: %w", err)
	}
	logger.Info("Logged in", "user_id", resp.User.ID)
	return resp.User, nil
}

// Logout ends the session on the server, then forgets every piece of
// user-scoped state. A failed server call does not keep the local session.
func (a *App) Logout(ctx context.Context) error {
	if env := a.API.Logout(ctx); !env.Success {
		logger.Warn("Server logout failed", "error", env.FailureMessage())
	}

	err := a.Session.Logout()
	a.Cache.Clear()
	a.Chat.Clear()
	a.Admin.Clear()
	a.closeSocket()
	return err
}

// ConnectSocket opens the real-time channel with the session's token
func (a *App) ConnectSocket(ctx context.Context) error {
	current := a.Session.Current()
	if current == nil {
		return apierrors.AuthError("Not logged in")
	}
	return a.Socket.Connect(ctx, current.AccessToken)
}

// Policy is the configured behavior for a rejected optimistic update
func (a *App) Policy() mutation.FailurePolicy {
	if a.Settings.RollbackOnFailure {
		return mutation.RollbackOnFailure
	}
	return mutation.KeepOnFailure
}

// Deps are the shared resources handed to mutation flows
func (a *App) Deps() mutation.Deps {
	return mutation.Deps{Cache: a.Cache, Metrics: a.Metrics}
}

// PresenceWatcher returns a watcher bound to the socket's connected flag.
// Callers set the user id and Close it when done.
func (a *App) PresenceWatcher(ctx context.Context) *presence.Watcher {
	w := presence.NewWatcher(ctx, a.API, a.Socket, a.Metrics)
	unbind := presence.BindConnection(w, a.Socket)
	a.track(unbind)
	return w
}

// Searcher runs user searches through the shared cache
func (a *App) Searcher() *search.Searcher {
	opts := search.DefaultOptions()
	if a.Settings.SearchStaleTime > 0 {
		opts.StaleTime = a.Settings.SearchStaleTime
	}
	return search.NewSearcher(a.Cache, a.API, opts)
}

// LiveSearch debounces raw input and reports every settled search
func (a *App) LiveSearch(ctx context.Context, onResult func(search.Outcome)) *search.Live {
	interval := a.Settings.SearchDebounce
	if interval <= 0 {
		interval = search.DefaultDebounce
	}
	return search.NewLive(ctx, a.Searcher(), interval, onResult)
}

// ResendTimer gates resending a verification code
func (a *App) ResendTimer() *countdown.Timer {
	return countdown.New(a.Settings.ResendSeconds)
}

// Close releases listeners and the socket
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		unbind := a.unbind
		a.unbind = nil
		a.mu.Unlock()
		for _, fn := range unbind {
			fn()
		}
		a.closeSocket()
	})
}

func (a *App) closeSocket() {
	if a.Socket.State() == websocket.StateDisconnected {
		return
	}
	if err := a.Socket.Disconnect(); err != nil {
		logger.Warn("Failed to close socket", "error", err)
	}
}

func (a *App) track(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unbind = append(a.unbind, fn)
}
