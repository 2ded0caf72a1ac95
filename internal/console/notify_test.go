package console

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsExpireAfterDisplayWindow(t *testing.T) {
	now := time.Now()
	n := NewNotifier()
	n.now = func() time.Time { return now }

	n.Success("Dodano rekord")
	n.Error("Błąd połączenia z serwerem")
	require.Len(t, n.Active(), 2)

	now = now.Add(notificationTTL + time.Second)
	assert.Empty(t, n.Active())

	n.Success("Zapisano zmiany")
	require.Len(t, n.Active(), 1)
}

func TestNotificationsExpireIndividually(t *testing.T) {
	now := time.Now()
	n := NewNotifier()
	n.now = func() time.Time { return now }

	n.Error("pierwsza")
	now = now.Add(3 * time.Second)
	n.Success("druga")
	now = now.Add(2 * time.Second)

	// 5s have passed for the first, 2s for the second.
	active := n.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "druga", active[0].Message)
	assert.Equal(t, NotifySuccess, active[0].Level)
}

func TestNotifierIsSafeForConcurrentUse(t *testing.T) {
	n := NewNotifier()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				n.Error("Błąd")
				n.Active()
			}
		}()
	}
	wg.Wait()
}
