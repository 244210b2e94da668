package apiclient

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TokenFileName fixed storage key for the session token
const TokenFileName = "mged_token"

// ErrNoToken no session token is stored; the caller is anonymous
var ErrNoToken = errors.New("no session token stored")

// TokenStore holds the opaque bearer token between calls. Presence of a
// token implies "authenticated"; a 401 from any authenticated call is
// the only invalidation signal, so there is no client-side expiry logic.
type TokenStore interface {
	Token() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore persists the token in a single file under a fixed name
type FileTokenStore struct {
	path string
}

// NewFileTokenStore stores the token at dir/mged_token. An empty dir
// resolves to the user config directory.
func NewFileTokenStore(dir string) (*FileTokenStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "mged")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileTokenStore{path: filepath.Join(dir, TokenFileName)}, nil
}

// Token reads the stored token; ErrNoToken when absent
func (s *FileTokenStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes the token
func (s *FileTokenStore) Save(token string) error {
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear removes the token
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// StaticTokenStore wraps an in-memory token (per-request web sessions)
type StaticTokenStore struct {
	token string
}

// NewStaticTokenStore wraps the given token; empty means anonymous
func NewStaticTokenStore(token string) *StaticTokenStore {
	return &StaticTokenStore{token: token}
}

// Token returns the wrapped token
func (s *StaticTokenStore) Token() (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Save replaces the wrapped token
func (s *StaticTokenStore) Save(token string) error {
	s.token = token
	return nil
}

// Clear drops the wrapped token
func (s *StaticTokenStore) Clear() error {
	s.token = ""
	return nil
}
