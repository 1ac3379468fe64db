// Package email delivers participant notices through an external provider.
package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string
	From    string // falls back to the sender's default when empty
	Subject string
	HTML    string
}

// SendResult is the provider's acknowledgement of one message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers notices. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
