package domain

import "time"

// Message is a chat message. A nil RecipientID makes it public.
type Message struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	RecipientID *string   `json:"recipient_id"`
	Timestamp   time.Time `json:"timestamp"`

	// Seq is assigned by the store on insert and breaks timestamp ties.
	Seq int64 `json:"seq"`
}

func (m *Message) IsPublic() bool {
	return m.RecipientID == nil
}

// VisibleTo reports whether userID may read the message: its author, its
// recipient, or anyone when it has no recipient.
func (m *Message) VisibleTo(userID string) bool {
	if m.UserID == userID || m.IsPublic() {
		return true
	}
	return *m.RecipientID == userID
}
