// Package dispatch holds the outbound transport adapters. Each adapter turns
// an already-rendered message into one provider call and reports the outcome;
// retry, quota and logging decisions belong to the caller.
package dispatch

import (
	"context"
	"fmt"

	"github.com/emailzus/reminder-engine/internal/model"
)

// Result is the provider acknowledgement of an accepted message.
type Result struct {
	ProviderID string
	Response   string
}

// Error wraps a provider failure with the channel it happened on. Transport
// failures are terminal for the attempt: the caller logs them, it never
// retries within a sweep.
type Error struct {
	Channel model.Channel
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s dispatch failed: %s: %v", e.Channel, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s dispatch failed: %s", e.Channel, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// EmailMessage is a fully rendered email ready for the provider.
type EmailMessage struct {
	To          string
	ToName      string
	Subject     string
	HTML        string
	Company     *model.Company
	Attachments []string // paths relative to the attachment root
}

// SMSMessage is a fully rendered text ready for the provider. To must
// already be E.164.
type SMSMessage struct {
	To   string
	Body string
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg *EmailMessage) (*Result, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, msg *SMSMessage) (*Result, error)
}
