// Package tokenstore holds the single active credential between runs.
package tokenstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists at most one opaque token. Implementations are synchronous.
type Store interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// DefaultPath returns ~/.mdd/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".mdd", "token"), nil
}

// FileStore keeps the token in a 0600 file. When the file is missing, a
// token from the environment variable envKey is used instead, until the
// store is cleared in this process.
type FileStore struct {
	path   string
	envKey string

	mu      sync.Mutex
	cleared bool
}

// NewFileStore returns a store backed by path. envKey may be empty.
func NewFileStore(path, envKey string) *FileStore {
	return &FileStore{path: path, envKey: envKey}
}

// Path returns the file the token is written to.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the stored token using precedence: file > env var > absent.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err == nil {
		if tok := strings.TrimSpace(string(data)); tok != "" {
			return tok, true
		}
	}
	if s.cleared || s.envKey == "" {
		return "", false
	}
	if tok := strings.TrimSpace(os.Getenv(s.envKey)); tok != "" {
		return tok, true
	}
	return "", false
}

// Set writes token to disk, creating the parent directory if needed.
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("tokenstore.Set: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("tokenstore.Set: %w", err)
	}
	s.cleared = false
	return nil
}

// Clear removes the token file. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleared = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore.Clear: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store seeded with token (empty means absent).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
