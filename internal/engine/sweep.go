package engine

import (
	"context"
	"time"

	"github.com/emailzus/reminder-engine/internal/dispatch"
	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/internal/phone"
	"github.com/emailzus/reminder-engine/pkg/logger"
	"github.com/emailzus/reminder-engine/pkg/prom"
)

// ReminderStore is the persistence surface the sweep needs for reminders.
type ReminderStore interface {
	ListDue(ctx context.Context, now time.Time) ([]*model.DueReminder, error)
	Update(ctx context.Context, rem *model.Reminder) error
}

// LogStore appends delivery attempt rows.
type LogStore interface {
	Create(ctx context.Context, log *model.DeliveryLog) (*model.DeliveryLog, error)
}

// SweepResult is the aggregate outcome of one sweep pass.
type SweepResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Sweep is the periodic orchestrator. Each invocation loads the due-list
// once and walks it serially; every reminder is one isolated unit of work
// whose failure never aborts the pass. Only failure to load the due-list is
// fatal.
type Sweep struct {
	clock     Clock
	reminders ReminderStore
	logs      LogStore
	quota     *QuotaGate
	renderer  *Renderer
	email     dispatch.EmailSender
	sms       dispatch.SMSSender
	claims    *Claims

	dispatchTimeout time.Duration
	smsRegion       string
}

type SweepConfig struct {
	Clock           Clock
	Reminders       ReminderStore
	Logs            LogStore
	Quota           *QuotaGate
	Renderer        *Renderer
	Email           dispatch.EmailSender
	SMS             dispatch.SMSSender
	Claims          *Claims
	DispatchTimeout time.Duration
	SMSRegion       string
}

func NewSweep(cfg SweepConfig) *Sweep {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 15 * time.Second
	}
	if cfg.SMSRegion == "" {
		cfg.SMSRegion = "US"
	}
	return &Sweep{
		clock:           cfg.Clock,
		reminders:       cfg.Reminders,
		logs:            cfg.Logs,
		quota:           cfg.Quota,
		renderer:        cfg.Renderer,
		email:           cfg.Email,
		sms:             cfg.SMS,
		claims:          cfg.Claims,
		dispatchTimeout: cfg.DispatchTimeout,
		smsRegion:       cfg.SMSRegion,
	}
}

type iterationOutcome int

const (
	iterationOK iterationOutcome = iota
	iterationFailed
	iterationSkipped
)

// ProcessDueReminders runs one sweep pass over every due reminder.
func (s *Sweep) ProcessDueReminders(ctx context.Context) (SweepResult, error) {
	started := s.clock.Now()

	due, err := s.reminders.ListDue(ctx, started)
	if err != nil {
		logger.Error("sweep could not load due reminders", "error", err)
		return SweepResult{}, err
	}

	var result SweepResult
	for _, d := range due {
		switch s.processOne(ctx, d, started) {
		case iterationOK:
			result.Processed++
		case iterationFailed:
			result.Errors++
		}
	}

	prom.ObserveSweepDuration(s.clock.Now().Sub(started).Seconds())
	prom.AddSweepResult(result.Processed, result.Errors)
	logger.Info("sweep finished",
		"due", len(due),
		"processed", result.Processed,
		"errors", result.Errors,
	)

	return result, nil
}

// processOne drives a single reminder through evaluate, dispatch and advance.
// The advancer runs even when dispatch failed, so a broken provider cannot
// make a reminder fire on every subsequent sweep.
func (s *Sweep) processOne(ctx context.Context, due *model.DueReminder, now time.Time) iterationOutcome {
	rem := due.Reminder

	release, locked, err := s.claims.LockReminder(rem.ID)
	if err != nil {
		logger.Error("reminder lock failed", "reminder_id", rem.ID, "error", err)
		return iterationFailed
	}
	if !locked {
		// another sweep holds this reminder right now
		return iterationSkipped
	}
	defer release()

	failed := false

	if ShouldNotify(now, rem.StartAt, rem.RecurrenceRule.NotificationRules) {
		if due.Customer.Notification.WantsEmail() && due.Customer.Email != "" {
			if !s.dispatchEmail(ctx, due, now) {
				failed = true
			}
		}
		if due.Customer.SMSEligible() {
			if !s.dispatchSMS(ctx, due, now) {
				failed = true
			}
		}
	}

	Advance(rem, now)
	if err := s.reminders.Update(ctx, rem); err != nil {
		logger.Error("reminder advancement not persisted", "reminder_id", rem.ID, "error", err)
		failed = true
	}

	if failed {
		return iterationFailed
	}
	return iterationOK
}

// dispatchEmail runs the quota, claim, render, send, log sequence for the
// email channel. Returns false only on a counted error; quota suppression
// and lost claims are silent.
func (s *Sweep) dispatchEmail(ctx context.Context, due *model.DueReminder, now time.Time) bool {
	allowed, err := s.quota.CanSend(ctx, due.Company.ID, due.Subscription, model.ChannelEmail, 1, now)
	if err != nil {
		logger.Error("email quota check failed", "reminder_id", due.Reminder.ID, "error", err)
		return false
	}
	if !allowed {
		prom.IncQuotaSuppressed(string(model.ChannelEmail))
		logger.Info("email suppressed by quota", "company_id", due.Company.ID, "reminder_id", due.Reminder.ID)
		return true
	}

	claimed, err := s.claims.ClaimDispatch(due.Reminder.ID, model.ChannelEmail, due.Reminder.NextRunAt)
	if err != nil {
		logger.Error("email dispatch claim failed", "reminder_id", due.Reminder.ID, "error", err)
		return false
	}
	if !claimed {
		return true
	}

	body := s.renderer.Render(due.Template, due.Customer, due.Company, due.Subscription, model.ChannelEmail, now)

	sendCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	result, err := s.email.SendEmail(sendCtx, &dispatch.EmailMessage{
		To:          due.Customer.Email,
		ToName:      due.Customer.Name,
		Subject:     Subject(due.Template),
		HTML:        body,
		Company:     due.Company,
		Attachments: due.Template.Attachments,
	})

	return s.recordOutcome(ctx, due, model.ChannelEmail, due.Customer.Email, Subject(due.Template), body, result, err, now)
}

func (s *Sweep) dispatchSMS(ctx context.Context, due *model.DueReminder, now time.Time) bool {
	allowed, err := s.quota.CanSend(ctx, due.Company.ID, due.Subscription, model.ChannelSMS, 1, now)
	if err != nil {
		logger.Error("sms quota check failed", "reminder_id", due.Reminder.ID, "error", err)
		return false
	}
	if !allowed {
		prom.IncQuotaSuppressed(string(model.ChannelSMS))
		logger.Info("sms suppressed by quota", "company_id", due.Company.ID, "reminder_id", due.Reminder.ID)
		return true
	}

	claimed, err := s.claims.ClaimDispatch(due.Reminder.ID, model.ChannelSMS, due.Reminder.NextRunAt)
	if err != nil {
		logger.Error("sms dispatch claim failed", "reminder_id", due.Reminder.ID, "error", err)
		return false
	}
	if !claimed {
		return true
	}

	body := s.renderer.Render(due.Template, due.Customer, due.Company, due.Subscription, model.ChannelSMS, now)

	destination, err := phone.Normalize(due.Customer.Phone, s.smsRegion)
	if err != nil {
		return s.recordOutcome(ctx, due, model.ChannelSMS, due.Customer.Phone, "", body, nil, err, now)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	result, err := s.sms.SendSMS(sendCtx, &dispatch.SMSMessage{
		To:   destination,
		Body: body,
	})

	return s.recordOutcome(ctx, due, model.ChannelSMS, destination, "", body, result, err, now)
}

// recordOutcome appends the delivery log row for one attempt. A row is
// written for both outcomes; only quota-suppressed sends leave no trace.
// Returns false when the attempt or the log write counts as an error.
func (s *Sweep) recordOutcome(ctx context.Context, due *model.DueReminder, channel model.Channel, destination, subject, body string, result *dispatch.Result, sendErr error, now time.Time) bool {
	row := &model.DeliveryLog{
		CompanyID:   due.Company.ID,
		CustomerID:  due.Customer.ID,
		TemplateID:  due.Template.ID,
		Channel:     channel,
		Destination: destination,
		Subject:     subject,
		Message:     body,
		Automated:   true,
	}

	if sendErr != nil {
		row.Status = model.DeliveryStatusFailed
		row.Response = sendErr.Error()
		logger.Error("dispatch failed",
			"reminder_id", due.Reminder.ID,
			"channel", string(channel),
			"error", sendErr,
		)
	} else {
		sentAt := now
		row.Status = model.DeliveryStatusSent
		row.SentAt = &sentAt
		if result != nil {
			row.ProviderID = result.ProviderID
			row.Response = result.Response
		}
	}
	prom.IncDispatch(string(channel), string(row.Status))

	if _, err := s.logs.Create(ctx, row); err != nil {
		// the message may have gone out; degrade to error counting
		logger.Error("delivery log write failed", "reminder_id", due.Reminder.ID, "error", err)
		return false
	}

	return sendErr == nil
}
