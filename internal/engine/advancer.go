package engine

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

// Advance moves the reminder to its next scheduling state after a due sweep
// has processed it. One-time and unknown frequencies deactivate; recurring
// frequencies reschedule a fixed interval from now unless that would land
// past the expiry, in which case the reminder deactivates instead.
//
// Advance runs whether or not anything was actually sent: a due reminder
// consumes one recurrence step per sweep that picks it up.
func Advance(rem *model.Reminder, now time.Time) {
	interval, recurring := rem.RecurrenceRule.Frequency.Interval()
	if !recurring {
		rem.Active = false
		return
	}

	next := now.Add(interval)
	if exp := rem.RecurrenceRule.ExpiresAt; exp != nil && next.After(*exp) {
		rem.Active = false
		return
	}

	rem.NextRunAt = next
}
