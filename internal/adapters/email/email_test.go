package email

import (
	"context"
	"strings"
	"testing"
)

// TestWelcomeNotice verifies recipients and escaping.
func TestWelcomeNotice(t *testing.T) {
	req, err := WelcomeNotice("<Alice>", "alice@example.com")
	if err != nil {
		t.Fatalf("WelcomeNotice: %v", err)
	}
	if len(req.To) != 1 || req.To[0] != "alice@example.com" {
		t.Errorf("To = %v", req.To)
	}
	if strings.Contains(req.HTML, "<Alice>") {
		t.Error("name should be HTML-escaped")
	}
	if !strings.Contains(req.HTML, "&lt;Alice&gt;") {
		t.Errorf("HTML = %q, want escaped name", req.HTML)
	}
}

// TestAbsenceNotice verifies the date appears in subject and body.
func TestAbsenceNotice(t *testing.T) {
	req, err := AbsenceNotice("Bob", "bob@example.com", "2024-01-03")
	if err != nil {
		t.Fatalf("AbsenceNotice: %v", err)
	}
	if !strings.Contains(req.Subject, "2024-01-03") {
		t.Errorf("Subject = %q", req.Subject)
	}
	if !strings.Contains(req.HTML, "2024-01-03") || !strings.Contains(req.HTML, "Bob") {
		t.Errorf("HTML = %q", req.HTML)
	}
}

// TestNoopSender_SendBatch verifies one result per request.
func TestNoopSender_SendBatch(t *testing.T) {
	s := NewNoopSender()
	reqs := []SendRequest{{To: []string{"a@example.com"}}, {To: []string{"b@example.com"}}}

	results, err := s.SendBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if results[0].MessageID == results[1].MessageID {
		t.Error("message ids should differ")
	}

	empty, err := s.SendBatch(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty batch = %v, %v", empty, err)
	}
}

// TestNoopSender_Send verifies a message id is issued.
func TestNoopSender_Send(t *testing.T) {
	res, err := NewNoopSender().Send(context.Background(), SendRequest{To: []string{"a@example.com"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(res.MessageID, "noop-") || res.SentAt.IsZero() {
		t.Errorf("result = %+v", res)
	}
}
