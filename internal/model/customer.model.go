package model

import "time"

// NotificationPreference is the customer's channel opt-in setting.
type NotificationPreference string

const (
	NotifyEmail NotificationPreference = "email"
	NotifySMS   NotificationPreference = "sms"
	NotifyBoth  NotificationPreference = "both"
	NotifyNone  NotificationPreference = "none"
)

// WantsEmail reports whether email dispatch is allowed by preference alone.
func (n NotificationPreference) WantsEmail() bool {
	return n == NotifyEmail || n == NotifyBoth
}

// WantsSMS reports whether SMS dispatch is allowed by preference alone.
// SMS additionally requires opt-in and a phone number, see Customer.SMSEligible.
func (n NotificationPreference) WantsSMS() bool {
	return n == NotifySMS || n == NotifyBoth
}

type Customer struct {
	ID           int64                  `json:"id"`
	CompanyID    int64                  `json:"company_id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Address      string                 `json:"address"`
	Country      string                 `json:"country"`
	Notification NotificationPreference `json:"notification"`
	SMSOptIn     bool                   `json:"sms_opt_in"`
	TemplateID   *int64                 `json:"template_id"`
	Frequency    *Frequency             `json:"frequency"`
	CreatedAt    time.Time              `json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

// SMSEligible is the full SMS gate: preference, explicit opt-in, and a
// destination number must all be present.
func (c *Customer) SMSEligible() bool {
	return c.Notification.WantsSMS() && c.SMSOptIn && c.Phone != ""
}
