package model

import "time"

// DeliveryStatus is the terminal outcome of one dispatch attempt. There is no
// pending state: rows are written after the provider call returns.
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// DeliveryLog is one append-only row per dispatch attempt. Rows are never
// updated and never cascade-deleted; they back both quota counting and audit.
type DeliveryLog struct {
	ID          int64          `json:"id"`
	CompanyID   int64          `json:"company_id"`
	CustomerID  int64          `json:"customer_id"`
	TemplateID  int64          `json:"template_id"`
	Channel     Channel        `json:"channel"`
	Destination string         `json:"destination"` // email address or E.164 phone
	Subject     string         `json:"subject"`     // email only
	Message     string         `json:"message"`     // sms body
	Status      DeliveryStatus `json:"status"`
	ProviderID  string         `json:"provider_id"` // set on sent
	Response    string         `json:"response"`    // error detail on failed
	Automated   bool           `json:"automated"`
	SentAt      *time.Time     `json:"sent_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (DeliveryLog) TableName() string { return "delivery_logs" }
