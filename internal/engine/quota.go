package engine

import (
	"context"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

// SentCounter counts successful sends for quota accounting. Implemented by
// the delivery log repository.
type SentCounter interface {
	CountSent(ctx context.Context, companyID int64, channel model.Channel, from, to time.Time) (int64, error)
}

// QuotaGate enforces per-company monthly send limits. The window is the
// current calendar month at check time, not a billing anniversary, so
// counters reset on the 1st.
//
// The check is read-then-decide with no reservation: concurrent sweeps can
// overshoot the limit by a small margin, which the dispatch claim layer
// bounds in practice.
type QuotaGate struct {
	counter SentCounter
}

func NewQuotaGate(counter SentCounter) *QuotaGate {
	return &QuotaGate{counter: counter}
}

// CanSend reports whether sending count more messages on the channel keeps
// the company within its monthly limit. A company without a subscription is
// on the free tier.
func (g *QuotaGate) CanSend(ctx context.Context, companyID int64, sub *model.Subscription, channel model.Channel, count int, now time.Time) (bool, error) {
	limit := channelLimit(sub, channel)

	from, to := monthWindow(now)
	current, err := g.counter.CountSent(ctx, companyID, channel, from, to)
	if err != nil {
		return false, err
	}

	return current+int64(count) <= int64(limit), nil
}

func channelLimit(sub *model.Subscription, channel model.Channel) int {
	if sub == nil {
		if channel == model.ChannelSMS {
			return model.DefaultFreeSMSLimit
		}
		return model.DefaultFreeEmailLimit
	}
	if channel == model.ChannelSMS {
		return sub.SMSLimit()
	}
	return sub.EmailLimit()
}

func monthWindow(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}
