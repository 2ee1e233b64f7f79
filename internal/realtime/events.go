package realtime

import "encoding/json"

// Event names the backend pushes into a user's room.
const (
	EventJoin                = "join"
	EventCartBadge           = "cart:badge"
	EventOrderUpdated        = "order:updated"
	EventFavoriteCount       = "favorite:count"
	EventNotificationCreated = "notification:created"
	EventNotificationDeleted = "notification:deleted"
	EventChatMessage         = "chat:message"
	EventLivestreamCount     = "livestream:count"
)

// Event is one message on the socket, in either direction.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CountPayload is the body of the badge/count events.
type CountPayload struct {
	Count int `json:"count"`
}

// DeletedPayload is the body of deletion events.
type DeletedPayload struct {
	ID string `json:"id"`
}

// ChatMessage is the body of chat events, both pushed and emitted.
type ChatMessage struct {
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Message string `json:"message"`
	SentAt  int64  `json:"sent_at"`
}
