package message

import "chatapi/internal/domain"

type CreateMessageRequest struct {
	Content     string  `json:"content" validate:"required"`
	RecipientID *string `json:"recipient_id,omitempty"`
}

type ListResponse struct {
	Messages []domain.Message `json:"messages"`
	Count    int              `json:"count"`
}

func newListResponse(msgs []domain.Message) ListResponse {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return ListResponse{Messages: msgs, Count: len(msgs)}
}
