package dispatch

import (
	"context"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

const defaultSMSTimeout = 30 * time.Second

// SMSDispatcher sends rendered texts through Twilio.
type SMSDispatcher struct {
	client     *twilio.RestClient
	fromNumber string
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	Timeout    time.Duration
}

func NewSMSDispatcher(cfg SMSConfig) *SMSDispatcher {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	// The SDK's message call takes no context, so the deadline has to live
	// on the HTTP client itself. Without it a wedged provider connection
	// would stall the whole sweep.
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMSTimeout
	}
	client.Client.SetTimeout(timeout)

	return &SMSDispatcher{
		client:     client,
		fromNumber: cfg.FromNumber,
	}
}

func (d *SMSDispatcher) SendSMS(ctx context.Context, msg *SMSMessage) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Channel: model.ChannelSMS, Detail: "dispatch cancelled", Err: err}
	}

	params := &api.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(d.fromNumber)
	params.SetBody(msg.Body)

	resp, err := d.client.Api.CreateMessage(params)
	if err != nil {
		return nil, &Error{Channel: model.ChannelSMS, Detail: "provider call failed", Err: err}
	}

	result := &Result{}
	if resp.Sid != nil {
		result.ProviderID = *resp.Sid
	}
	if resp.Status != nil {
		result.Response = *resp.Status
	}
	return result, nil
}
