package message

import "time"

// Sender identifies which side of the conversation wrote a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAdmin Sender = "admin"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAdmin
}

// Message is a chat message attached to an order.
type Message struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateMessageModel is the input for posting a message.
type CreateMessageModel struct {
	OrderID string
	UserID  string
	Text    string
	Sender  Sender
}
