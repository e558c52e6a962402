package identity

import "sync"

// EventType is an auth-state change
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventSignedUp       EventType = "SIGNED_UP"
)

// Event describes one auth-state change for a user
type Event struct {
	Type   EventType
	UserID string
	Email  string
}

// Notifier fans auth-state changes out to subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Notifier struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

// NewNotifier creates a notifier whose subscriber channels hold buffer events
func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &Notifier{subs: make(map[int]chan Event), buffer: buffer}
}

// Subscribe returns a channel of events and an unsubscribe function.
// Unsubscribe closes the channel and is safe to call more than once.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Event, n.buffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

// Publish delivers ev to every current subscriber
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
