// Package session stores the credential returned by login and hands it to
// the API client.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/logging"
)

//lint:ignore ST1005, user facing error
var ErrNoSession = errors.New(`Not logged in. Use "pharmabi login" to log in`)

// Provider is the single owner of the credential. Clear takes effect for the
// very next call to Token.
type Provider interface {
	Token() string
	Set(res *api.LoginResponse) error
	Clear() error
}

const fileName = "session"

// Session is the persisted form of a login: the token and the profile that
// came with it.
type Session struct {
	Token   string             `json:"token"`
	Profile *api.LoginResponse `json:"profile,omitempty"`
}

// ExpiresAt returns the expiry of the token. The token is decoded without
// verifying its signature; only the backend can do that. ok is false when
// the token has no expiry or is not a JWT.
func (s Session) ExpiresAt() (expires time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		logging.Debugf("decode session token: %v", err)
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// FileStore keeps the session in a file, mode 0600, under dir. The file is
// read once and cached.
type FileStore struct {
	fs   afero.Fs
	path string

	mu      sync.Mutex
	loaded  bool
	current *Session
}

func NewFileStore(fsys afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fsys, path: filepath.Join(dir, fileName)}
}

// DefaultDir is ~/.pharmabi.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pharmabi"), nil
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored session, or ErrNoSession.
func (s *FileStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	if s.current == nil || s.current.Token == "" {
		return nil, ErrNoSession
	}
	copied := *s.current
	return &copied, nil
}

func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}

	contents, err := afero.ReadFile(s.fs, s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.loaded = true
		return nil
	case err != nil:
		return fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(contents, &sess); err != nil {
		return fmt.Errorf("read session %s: %w", s.path, err)
	}
	s.current = &sess
	s.loaded = true
	return nil
}

// Token returns the stored token, or "" when there is none. Errors reading
// the session are logged and treated as no session.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		logging.Warnf("%v", err)
		return ""
	}
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *FileStore) Set(res *api.LoginResponse) error {
	if res == nil || res.Token == "" {
		return fmt.Errorf("login response has no token")
	}

	sess := &Session{Token: res.Token, Profile: res}
	contents, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, contents, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.current = sess
	s.loaded = true
	return nil
}

// Clear forgets the session. The cached token is dropped before the file is
// removed, so a failure to remove the file still logs out this process.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.loaded = true

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
