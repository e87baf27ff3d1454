package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore keeps the session in a single JSON document on disk, the durable
// storage a browser client would keep in localStorage. Writes go through a
// temp file and rename so a crash mid-write leaves either the old session or
// the new one, never a torn mix.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// DefaultSessionPath returns the conventional per-user location for the
// session file.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "trailstory", "session.json"), nil
}

func (f *FileStore) Save(_ context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	userData, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}

	entries := map[string]string{
		keyAccessToken:  s.AccessToken,
		keyRefreshToken: s.RefreshToken,
		keyUser:         string(userData),
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}

	f.logger.Debug().Str("path", f.path).Msg("session saved")
	return nil
}

func (f *FileStore) Load(_ context.Context) (Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn().Err(err).Str("path", f.path).Msg("session file unreadable, treating as absent")
		}
		return Session{}, false
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("session file corrupt, treating as absent")
		return Session{}, false
	}

	s := Session{
		AccessToken:  entries[keyAccessToken],
		RefreshToken: entries[keyRefreshToken],
	}
	if s.AccessToken == "" {
		return Session{}, false
	}

	if raw := entries[keyUser]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			// Tokens are still usable; the profile will be re-fetched.
			f.logger.Warn().Err(err).Msg("stored user profile corrupt, ignoring")
			s.User = UserProfile{}
		}
	}

	return s, true
}

func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := f.Load(ctx)
	return ok
}
