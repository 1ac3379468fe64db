package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs notices without delivering them. Used when no provider key is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the notice.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("notice_event", "event", "noop_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// SendBatch logs each notice in the batch.
// POST: Returns one result per request, in order
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	now := time.Now()
	for i, req := range reqs {
		slog.Info("notice_event", "event", "noop_batch", "index", i, "to", req.To, "subject", req.Subject)
		results = append(results, SendResult{
			MessageID: fmt.Sprintf("noop-batch-%d-%d", now.UnixNano(), i),
			SentAt:    now,
		})
	}
	return results, nil
}
