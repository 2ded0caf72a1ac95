package console

import (
	"sync"
	"time"
)

// NotificationLevel styles a notification.
type NotificationLevel int

const (
	NotifySuccess NotificationLevel = iota
	NotifyError
)

// notificationTTL is how long a notification stays visible.
const notificationTTL = 4 * time.Second

// Notification is one auto-dismissing user message.
type Notification struct {
	Level   NotificationLevel
	Message string
	at      time.Time
}

// Notifier collects auto-dismissing notifications. Every mutating action
// reports exactly one success or one failure through it. Debounced searches
// push from their timer goroutine, so access is locked.
type Notifier struct {
	mu      sync.Mutex
	entries []Notification
	now     func() time.Time
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{now: time.Now}
}

// Success pushes a success-styled notification.
func (n *Notifier) Success(message string) {
	n.push(NotifySuccess, message)
}

// Error pushes an error-styled notification.
func (n *Notifier) Error(message string) {
	n.push(NotifyError, message)
}

func (n *Notifier) push(level NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, Notification{Level: level, Message: message, at: n.now()})
}

// Active returns the notifications still within their display window,
// dropping expired ones.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := n.now().Add(-notificationTTL)
	kept := n.entries[:0]
	for _, e := range n.entries {
		if e.at.After(cutoff) {
			kept = append(kept, e)
		}
	}
	n.entries = kept
	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}
