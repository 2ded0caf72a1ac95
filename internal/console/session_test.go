package console

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestSessionRoundTrip(t *testing.T) {
	store := tempStore(t)

	sess := &Session{
		User:  map[string]any{"id": float64(1), "login": "admin"},
		Role:  "admin",
		Token: "tok-1",
	}
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "admin", loaded.Role)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "admin", loaded.User["login"])
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(&Session{Role: "admin", Token: "tok"}))

	// Move the clock past the expiry window.
	store.now = func() time.Time { return time.Now().Add(SessionTTL + time.Minute) }

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// The expired file is gone; a fresh clock still sees nothing.
	store.now = time.Now
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionMissingFile(t *testing.T) {
	store := tempStore(t)
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionCorruptFileTreatedAsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewSessionStore(path)
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionClear(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(&Session{Role: "admin", LastView: "budynek"}))
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing twice is fine.
	assert.NoError(t, store.Clear())
}

func TestSessionApartmentID(t *testing.T) {
	sess := &Session{User: map[string]any{"apt_id": float64(7)}}
	assert.Equal(t, int64(7), sess.ApartmentID())

	assert.Equal(t, int64(0), (&Session{User: map[string]any{}}).ApartmentID())
}
