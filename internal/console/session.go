package console

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// SessionTTL is how long a stored session stays valid.
const SessionTTL = time.Hour

// Session is the persisted login state plus the last active view.
type Session struct {
	User      map[string]any `json:"user"`
	Role      string         `json:"role"`
	Token     string         `json:"token"`
	Timestamp time.Time      `json:"timestamp"`
	LastView  string         `json:"last_view,omitempty"`
}

// ApartmentID returns the resident's apartment id claim, 0 for admins.
func (s *Session) ApartmentID() int64 {
	if v, ok := s.User["apt_id"].(float64); ok {
		return int64(v)
	}
	return 0
}

// SessionStore persists the session as a JSON file.
type SessionStore struct {
	path string
	now  func() time.Time
}

// NewSessionStore creates a store writing to path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path, now: time.Now}
}

// Save writes the session with a fresh timestamp.
func (s *SessionStore) Save(sess *Session) error {
	sess.Timestamp = s.now()
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load reads the stored session. Expired or missing sessions return nil with
// no error; an expired file is removed.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupt session files are treated as logged out.
		_ = os.Remove(s.path)
		return nil, nil
	}
	if s.now().Sub(sess.Timestamp) > SessionTTL {
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &sess, nil
}

// Clear removes the stored session, including the last-view state.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
