package outbox

import (
	"time"
)

// ContentTypeJSON is the content type of every order event.
const ContentTypeJSON = "application/json"

// Message is an order event written in the order transaction and relayed to the broker later.
type Message struct {
	ID            int64
	EventID       string
	Exchange      string
	RoutingKey    string
	Payload       []byte
	ContentType   string
	Attempts      int
	MaxAttempts   int
	LastError     string
	CreatedAt     time.Time
	NextAttemptAt time.Time
}

// Failed returns the attempt count after one more failed publish and when to try again.
// The delay doubles with every attempt starting from base.
func (m Message) Failed(now time.Time, base time.Duration) (int, time.Time) {
	attempts := m.Attempts + 1

	return attempts, now.Add(base << (attempts - 1))
}

// Exhausted reports whether the message has used up its attempts. Zero MaxAttempts means no limit.
func (m Message) Exhausted() bool {
	return m.MaxAttempts > 0 && m.Attempts >= m.MaxAttempts
}
