package message

import "chatapi/internal/domain"

// Event types pushed over the live feed.
const (
	EventConnected      = "connected"
	EventNewMessage     = "new_message"
	EventMessageDeleted = "message_deleted"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ConnectedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type DeletedPayload struct {
	ID string `json:"id"`
}

func NewConnectedEvent(userID, username string) Event {
	return Event{Type: EventConnected, Payload: ConnectedPayload{UserID: userID, Username: username}}
}

func NewMessageEvent(msg domain.Message) Event {
	return Event{Type: EventNewMessage, Payload: msg}
}

func NewDeletedEvent(id string) Event {
	return Event{Type: EventMessageDeleted, Payload: DeletedPayload{ID: id}}
}
