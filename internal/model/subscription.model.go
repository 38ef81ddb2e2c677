package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Limit keys inside Subscription.Limits.
const (
	LimitEmailsPerMonth = "emails_per_month"
	LimitSMSPerMonth    = "sms_per_month"
	LimitTemplates      = "templates"
	LimitStorageMB      = "storage_mb"
)

// Free-tier defaults, also used when a company has no subscription row at all.
const (
	DefaultFreeEmailLimit    = 100
	DefaultFreeSMSLimit      = 10
	DefaultFreeTemplateLimit = 3
	DefaultPaidEmailLimit    = 10000
	DefaultPaidSMSLimit      = 1000
	DefaultPaidTemplateLimit = 50
)

type Subscription struct {
	ID             int64              `json:"id"`
	CompanyID      int64              `json:"company_id"`
	PlanType       string             `json:"plan_type"`
	Status         SubscriptionStatus `json:"status"`
	StartsAt       time.Time          `json:"starts_at"`
	ExpiresAt      *time.Time         `json:"expires_at"`
	RemoveBranding bool               `json:"remove_branding"`
	Limits         map[string]int     `json:"limits"`
}

func (Subscription) TableName() string { return "subscriptions" }

// IsActive reports whether the subscription is in force at time now.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionActive &&
		(s.ExpiresAt == nil || s.ExpiresAt.After(now))
}

// CanRemoveBranding is the branding-removal invariant: the flag alone is not
// enough, the subscription must also be currently active.
func (s *Subscription) CanRemoveBranding(now time.Time) bool {
	return s.RemoveBranding && s.IsActive(now)
}

func (s *Subscription) limit(key string, freeDefault, paidDefault int) int {
	if v, ok := s.Limits[key]; ok {
		return v
	}
	if s.PlanType == "free" {
		return freeDefault
	}
	return paidDefault
}

func (s *Subscription) EmailLimit() int {
	return s.limit(LimitEmailsPerMonth, DefaultFreeEmailLimit, DefaultPaidEmailLimit)
}

func (s *Subscription) SMSLimit() int {
	return s.limit(LimitSMSPerMonth, DefaultFreeSMSLimit, DefaultPaidSMSLimit)
}

func (s *Subscription) TemplateLimit() int {
	return s.limit(LimitTemplates, DefaultFreeTemplateLimit, DefaultPaidTemplateLimit)
}
