package credentials

import (
	"os"
	"path/filepath"
	"time"

	"github.com/athlink/cli/pkg/config"
	json "github.com/json-iterator/go"
)

type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
}

// Store reads and writes credentials at a fixed path
type Store struct {
	path string
}

// NewStore returns a Store for path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Default returns the Store at the configured credentials path
func Default() *Store {
	return NewStore(config.GetCredentialsPath())
}

func (s *Store) Path() string {
	return s.path
}

// Load loads credentials from disk. Missing credentials are (nil, nil).
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Save saves credentials to disk, owner read/write only
func (s *Store) Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Delete removes the credentials file. Deleting missing credentials is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsExpired checks if the access token is expired. A zero expiry never expires.
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are valid
func (c *Credentials) IsValid() bool {
	return c.AccessToken != "" && !c.IsExpired()
}

func (c *Credentials) IsAdmin() bool {
	return c.Role == "ADMIN"
}
