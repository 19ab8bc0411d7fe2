package store

import (
	"sync"
	"time"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/credentials"
	"github.com/athlink/cli/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in account
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         api.User
}

// Expired reports whether the access token is past its expiry. Unknown expiry never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Persister saves sessions between runs
type Persister interface {
	Load() (*credentials.Credentials, error)
	Save(*credentials.Credentials) error
	Delete() error
}

// SessionStore holds the current session. The zero session means signed out.
type SessionStore struct {
	mu      sync.RWMutex
	session *Session
	persist Persister
	now     func() time.Time
	hub     hub[*Session]
}

// NewSessionStore creates a store. persist may be nil for an in-memory session.
func NewSessionStore(persist Persister) *SessionStore {
	return &SessionStore{persist: persist, now: time.Now}
}

// TokenExpiry reads the exp claim without verifying the signature.
// The server verifies; the client only needs to know when to stop trying.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// SessionFromLogin builds a session from a login response. Expiry comes from
// the token when it carries one, otherwise from expires_in.
func SessionFromLogin(resp api.LoginResponse, now time.Time) Session {
	s := Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if exp, ok := TokenExpiry(resp.AccessToken); ok {
		s.ExpiresAt = exp
	} else if resp.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return s
}

// Restore loads a persisted session, if any
func (s *SessionStore) Restore() (bool, error) {
	if s.persist == nil {
		return false, nil
	}
	creds, err := s.persist.Load()
	if err != nil || creds == nil {
		return false, err
	}

	session := &Session{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
		User: api.User{
			ID:       creds.UserID,
			Username: creds.Username,
			Email:    creds.Email,
			Role:     api.Role(creds.Role),
		},
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	logger.Debug("Session restored", "user_id", creds.UserID)
	s.hub.publish(s.Current())
	return true, nil
}

// Login replaces the session and persists it
func (s *SessionStore) Login(session Session) error {
	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()

	err := s.save()
	s.hub.publish(s.Current())
	return err
}

// UpdateUser replaces the session user wholesale. No-op when signed out.
func (s *SessionStore) UpdateUser(user api.User) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	next := *s.session
	next.User = user
	s.session = &next
	s.mu.Unlock()

	err := s.save()
	s.hub.publish(s.Current())
	return err
}

// SetAccessToken swaps in a refreshed access token
func (s *SessionStore) SetAccessToken(token string, expiresIn int) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	next := *s.session
	next.AccessToken = token
	if exp, ok := TokenExpiry(token); ok {
		next.ExpiresAt = exp
	} else if expiresIn > 0 {
		next.ExpiresAt = s.now().Add(time.Duration(expiresIn) * time.Second)
	}
	s.session = &next
	s.mu.Unlock()

	err := s.save()
	s.hub.publish(s.Current())
	return err
}

// Logout clears the session and the persisted credentials
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	var err error
	if s.persist != nil {
		err = s.persist.Delete()
	}
	s.hub.publish(nil)
	return err
}

// Current returns a copy of the session, nil when signed out
func (s *SessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// User returns the signed-in user
func (s *SessionStore) User() (api.User, bool) {
	current := s.Current()
	if current == nil {
		return api.User{}, false
	}
	return current.User, true
}

// IsAuthenticated reports whether there is an unexpired session
func (s *SessionStore) IsAuthenticated() bool {
	current := s.Current()
	return current != nil && current.AccessToken != "" && !current.Expired(s.now())
}

// Subscribe calls fn with every new session (nil on logout)
func (s *SessionStore) Subscribe(fn func(*Session)) func() {
	return s.hub.subscribe(fn)
}

func (s *SessionStore) save() error {
	if s.persist == nil {
		return nil
	}
	current := s.Current()
	if current == nil {
		return nil
	}
	return s.persist.Save(&credentials.Credentials{
		AccessToken:  current.AccessToken,
		RefreshToken: current.RefreshToken,
		ExpiresAt:    current.ExpiresAt,
		UserID:       current.User.ID,
		Username:     current.User.Username,
		Email:        current.User.Email,
		Role:         string(current.User.Role),
	})
}
