package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the most messages the Resend batch endpoint accepts per call.
const resendBatchLimit = 100

// ResendSender sends notices via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender for the given API key and default from address.
// PRE: apiKey is a valid Resend API key
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	return &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
}

// Send delivers a single notice.
// PRE: req has at least one recipient
// POST: Notice is queued; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("notice_event", "event", "resend_sent", "message_id", sent.Id, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers notices in chunks of resendBatchLimit.
// POST: On error, returns the results of the chunks already accepted
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for start := 0; start < len(reqs); start += resendBatchLimit {
		chunk := reqs[start:min(start+resendBatchLimit, len(reqs))]

		batch := make([]*resend.SendEmailRequest, 0, len(chunk))
		for _, req := range chunk {
			batch = append(batch, s.params(req))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			return results, fmt.Errorf("resend batch send failed after %d of %d: %w", len(results), len(reqs), err)
		}
		now := time.Now()
		for _, item := range resp.Data {
			results = append(results, SendResult{MessageID: item.Id, SentAt: now})
		}
		slog.Info("notice_event", "event", "resend_batch_sent", "count", len(chunk))
	}
	return results, nil
}
