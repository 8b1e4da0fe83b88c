package message

import "errors"

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrForbidden         = errors.New("message not visible to user")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrAuthorNotFound    = errors.New("author not found")
	ErrEmptyContent      = errors.New("message content is empty")
	ErrContentTooLong    = errors.New("message content too long")
)
