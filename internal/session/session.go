// Package session owns the persisted authentication state: the token pair
// and the identity record derived from it. The file survives restarts the
// way browser storage survives reloads; logout or an irrecoverable refresh
// failure erases it entirely.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Kodestorel007/fun-kanban/internal/api"
)

const sessionFile = "session.json"

// Store is the on-disk session. It is the sole holder of the credential
// pair; the mutex keeps a refresh from interleaving a partial write with a
// concurrent read.
type Store struct {
	Access  string    `json:"access_token,omitempty"`
	Refresh string    `json:"refresh_token,omitempty"`
	User    *api.User `json:"user,omitempty"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

// DefaultPath is the session file under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "funkanban", sessionFile), nil
}

// Open hydrates a Store from path. A missing file yields an empty,
// logged-out store rather than an error.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return s, nil
}

// Tokens returns the current credential pair.
func (s *Store) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Access, s.Refresh
}

// SetTokens replaces both credentials atomically and persists them.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	s.Access = access
	s.Refresh = refresh
	s.mu.Unlock()
	return s.save()
}

// Clear erases credentials and identity; the holder is logged out.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.Access = ""
	s.Refresh = ""
	s.User = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// SetUser caches the identity record fetched from /auth/me.
func (s *Store) SetUser(u *api.User) error {
	s.mu.Lock()
	s.User = u
	s.mu.Unlock()
	return s.save()
}

// Identity returns the cached identity, or nil when logged out.
func (s *Store) Identity() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.User
}

// LoggedIn reports whether any credential is present.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Access != "" || s.Refresh != ""
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// 0600: the file holds live credentials.
	return os.WriteFile(s.path, data, 0600)
}
