// Package session owns the client-side credential: one opaque bearer token,
// persisted durably with a fixed retention window, and exposed to the rest of
// the system through a single accessor so the "missing credential means fail
// fast" rule lives in exactly one place.
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

	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

const (
	appDir          = "jobmatch"
	credentialsName = "credentials.json"

	// Retention matches the 7-day cookie the web client used. A credential
	// older than this is treated as absent at startup.
	retention = 7 * 24 * time.Hour
)

type credentialFile struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	token     string
	listeners []func(authenticated bool)
}

// DefaultPath returns the durable credential location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, appDir, credentialsName), nil
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Initialize reads any persisted credential. A missing, unreadable, corrupt
// or expired file all leave the store unauthenticated; none of them is an
// error, since the user can simply log in again.
func (s *Store) Initialize() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unreadable credential file, treating as absent", zap.Error(err))
		}
		return nil
	}

	var cred credentialFile
	if err := json.Unmarshal(data, &cred); err != nil {
		s.logger.Warn("corrupt credential file, treating as absent", zap.Error(err))
		return nil
	}

	if cred.Token == "" {
		return nil
	}

	if age := s.now().Sub(cred.SavedAt); age > retention {
		s.logger.Info("stored credential expired", zap.Duration("age", age))
		return nil
	}

	s.mu.Lock()
	s.token = cred.Token
	s.mu.Unlock()

	return nil
}

// Login stores the credential durably and marks the session authenticated.
// Any prior credential is overwritten; concurrent writers are last-write-wins.
func (s *Store) Login(token string) error {
	if token == "" {
		return errors.New("empty credential")
	}

	data, err := json.MarshalIndent(credentialFile{Token: token, SavedAt: s.now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credential dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.notify(true)
	return nil
}

// Logout erases the durable credential and clears in-memory state. It always
// succeeds: a missing file is already the desired outcome and no network call
// is involved.
func (s *Store) Logout() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("removing credential file", zap.Error(err))
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.notify(false)
}

// Token returns the current credential for attachment to outgoing requests.
// Absence is an ErrUnauthenticated, never an empty send.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", transfer.ErrUnauthenticated
	}
	return s.token, nil
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// OnChange registers a callback fired after every login and logout, so guards
// can re-evaluate whenever the authentication signal changes.
func (s *Store) OnChange(fn func(authenticated bool)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(authenticated bool) {
	s.mu.RLock()
	listeners := make([]func(bool), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(authenticated)
	}
}
