package presence

import (
	"context"
	"sync"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/metrics"
)

// State of a Watcher's subscription
type State int

const (
	Unsubscribed State = iota
	InitialFetchPending
	Subscribed
)

func (s State) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case InitialFetchPending:
		return "initial_fetch_pending"
	case Subscribed:
		return "subscribed"
	default:
		return "unknown"
	}
}

// StatusFetcher reads a user's current status over REST
type StatusFetcher interface {
	GetUserStatus(ctx context.Context, userID int64) api.Envelope[api.UserStatus]
}

// Channel delivers pushed status changes
type Channel interface {
	SubscribeToUserStatus(userID int64, callback func(api.PresenceStatus)) func()
}

// ConnectionSource reports the channel's connected flag
type ConnectionSource interface {
	IsConnected() bool
	OnStateChange(fn func(connected bool)) func()
}

// Watcher tracks whether one user is online.
//
// It runs Unsubscribed -> InitialFetchPending -> Subscribed whenever it has
// a user id and the channel is connected. Any change of either input, or
// Close, releases the subscription, resets the status to offline and starts
// over. Each run has a generation; results from an older run are dropped.
type Watcher struct {
	ctx     context.Context
	fetcher StatusFetcher
	channel Channel
	metrics *metrics.Metrics

	mu          sync.Mutex
	userID      int64
	connected   bool
	closed      bool
	state       State
	online      bool
	gen         uint64
	unsubscribe func()
	early       *api.PresenceStatus

	listenersMu sync.Mutex
	listeners   map[int]func(online bool)
	nextID      int
}

// NewWatcher creates an idle watcher. ctx bounds the initial status fetches.
func NewWatcher(ctx context.Context, fetcher StatusFetcher, channel Channel, m *metrics.Metrics) *Watcher {
	return &Watcher{
		ctx:       ctx,
		fetcher:   fetcher,
		channel:   channel,
		metrics:   m,
		listeners: make(map[int]func(bool)),
	}
}

// BindConnection feeds the source's connected flag into w and returns the unbind func
func BindConnection(w *Watcher, src ConnectionSource) func() {
	unbind := src.OnStateChange(w.SetConnected)
	w.SetConnected(src.IsConnected())
	return unbind
}

// SetUserID changes the watched user. Zero means nobody.
func (w *Watcher) SetUserID(userID int64) {
	w.mu.Lock()
	if w.closed || w.userID == userID {
		w.mu.Unlock()
		return
	}
	w.userID = userID
	w.restartAndUnlock()
}

// SetConnected updates the channel's connected flag
func (w *Watcher) SetConnected(connected bool) {
	w.mu.Lock()
	if w.closed || w.connected == connected {
		w.mu.Unlock()
		return
	}
	w.connected = connected
	w.restartAndUnlock()
}

// Close releases the subscription for good
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.restartAndUnlock()
}

// Online reports the last known status
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// OnChange calls fn whenever the online flag changes
func (w *Watcher) OnChange(fn func(online bool)) func() {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn

	return func() {
		w.listenersMu.Lock()
		defer w.listenersMu.Unlock()
		delete(w.listeners, id)
	}
}

// restartAndUnlock releases the current run and starts a new one when the
// inputs allow. Called with w.mu held; returns with it released.
func (w *Watcher) restartAndUnlock() {
	w.gen++
	gen := w.gen
	release := w.unsubscribe
	w.unsubscribe = nil
	w.early = nil
	wasOnline := w.online
	w.online = false
	w.state = Unsubscribed

	start := !w.closed && w.userID != 0 && w.connected
	userID := w.userID
	if start {
		w.state = InitialFetchPending
	}
	w.mu.Unlock()

	if release != nil {
		release()
	}
	if wasOnline {
		w.notify(false)
	}
	if !start {
		return
	}

	logger.Debug("Presence subscription starting", "user_id", userID)
	go w.run(gen, userID)
}

func (w *Watcher) run(gen uint64, userID int64) {
	env := w.fetcher.GetUserStatus(w.ctx, userID)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	if !env.Success {
		w.state = Unsubscribed
		w.mu.Unlock()
		logger.Warn("Initial presence fetch failed", "user_id", userID, "error", env.FailureMessage())
		return
	}
	w.mu.Unlock()

	unsubscribe := w.channel.SubscribeToUserStatus(userID, func(status api.PresenceStatus) {
		w.deliver(gen, status)
	})

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		unsubscribe()
		return
	}
	w.unsubscribe = unsubscribe
	w.state = Subscribed
	status := env.Data.Status
	if w.early != nil {
		// a push that beat the subscription is newer than the REST answer
		status = *w.early
		w.early = nil
	}
	online, changed := w.applyLocked(status)
	w.mu.Unlock()

	w.metrics.PresenceUpdate()
	if changed {
		w.notify(online)
	}
}

func (w *Watcher) deliver(gen uint64, status api.PresenceStatus) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	if w.state != Subscribed {
		w.early = &status
		w.mu.Unlock()
		return
	}
	online, changed := w.applyLocked(status)
	w.mu.Unlock()

	w.metrics.PresenceUpdate()
	if changed {
		w.notify(online)
	}
}

// applyLocked maps a pushed status to the online flag: ONLINE is online, anything else is not
func (w *Watcher) applyLocked(status api.PresenceStatus) (online, changed bool) {
	online = status == api.StatusOnline
	changed = online != w.online
	w.online = online
	return online, changed
}

func (w *Watcher) notify(online bool) {
	w.listenersMu.Lock()
	fns := make([]func(bool), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.listenersMu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}
