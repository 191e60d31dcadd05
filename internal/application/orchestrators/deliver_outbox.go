package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/adapters/email"
	"rollcall/internal/domain/outbox"
)

// queuedMessage is the outbox payload of a queued email.
type queuedMessage struct {
	To      []string `json:"to"`
	From    string   `json:"from,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	Tag     string   `json:"tag,omitempty"`
}

// enqueueMessage stores msg as a pending outbox entry and returns its id.
func enqueueMessage(ctx context.Context, store OutboxStore, msg email.Message, now time.Time) (string, error) {
	payload, err := json.Marshal(queuedMessage{
		To:      msg.To,
		From:    msg.From,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Tag:     msg.Tag,
	})
	if err != nil {
		return "", fmt.Errorf("encode outbox payload: %w", err)
	}
	entry := outbox.NewEntry(uuid.New().String(), outbox.KindThresholdDigest, string(payload), now)
	if err := entry.Validate(); err != nil {
		return "", err
	}
	if err := store.Save(ctx, entry); err != nil {
		return "", fmt.Errorf("save outbox entry: %w", err)
	}
	return entry.ID, nil
}

// OutboxProcessor retries queued digest emails with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	sender    email.Sender
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a processor that delivers through sender.
func NewOutboxProcessor(store OutboxStore, sender email.Sender) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		sender:    sender,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// OutboxRunResult counts what one pass over the queue did.
type OutboxRunResult struct {
	Attempted int
	Sent      int
	Failed    int // attempts that failed, including ones that will be retried
}

// ProcessPending attempts up to batchSize due entries, oldest first.
// Entries still in backoff are skipped without using up the batch.
// PRE: Context is valid
// POST: Attempted entries are saved with their new status; entries still in backoff are untouched
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (OutboxRunResult, error) {
	entries, err := p.store.ListPending(ctx, 0)
	if err != nil {
		return OutboxRunResult{}, fmt.Errorf("list pending outbox entries: %w", err)
	}

	var res OutboxRunResult
	for _, entry := range entries {
		if res.Attempted == p.batchSize {
			break
		}
		now := p.now()
		if !entry.Due(now, p.baseDelay, p.maxDelay) {
			continue
		}
		res.Attempted++

		entry.MarkAttempt(now)
		messageID, err := p.deliver(ctx, entry)
		if err != nil {
			entry.MarkFailed(err)
			res.Failed++
			slog.Warn("outbox_delivery_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err)
		} else {
			entry.MarkSent(messageID)
			res.Sent++
			slog.Info("outbox_delivery_succeeded", "entry_id", entry.ID, "attempt", entry.Attempts, "message_id", messageID)
		}
		if err := p.store.Save(ctx, entry); err != nil {
			return res, fmt.Errorf("save outbox entry %s: %w", entry.ID, err)
		}
	}
	return res, nil
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry outbox.Entry) (string, error) {
	if entry.Kind != outbox.KindThresholdDigest {
		return "", fmt.Errorf("unknown outbox kind %q", entry.Kind)
	}
	var q queuedMessage
	if err := json.Unmarshal([]byte(entry.Payload), &q); err != nil {
		return "", fmt.Errorf("decode outbox payload: %w", err)
	}
	receipt, err := p.sender.Send(ctx, email.Message{
		To:      q.To,
		From:    q.From,
		Subject: q.Subject,
		HTML:    q.HTML,
		Text:    q.Text,
		Tag:     q.Tag,
	})
	if err != nil {
		return "", err
	}
	return receipt.MessageID, nil
}

// StartBackgroundWorker processes the outbox every interval until ctx is done.
func StartBackgroundWorker(ctx context.Context, processor *OutboxProcessor, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := processor.ProcessPending(ctx); err != nil && ctx.Err() == nil {
					slog.Error("outbox_background_process_failed", "error", err)
				}
			case <-ctx.Done():
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
