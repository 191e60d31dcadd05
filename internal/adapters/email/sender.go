package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("email has no recipients")

// Message is an outgoing email. HTML is required; Text is the plain fallback.
type Message struct {
	To      []string
	From    string // overrides the sender default when set
	Subject string
	HTML    string
	Text    string
	Tag     string // provider-side category, e.g. "threshold_digest"
}

// Validate checks the message can be handed to a provider.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if m.Subject == "" {
		return errors.New("email subject is required")
	}
	return nil
}

// Receipt is the provider's acknowledgement of a send.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
