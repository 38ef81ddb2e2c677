package repository

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

type SubscriptionEntity struct {
	ID             int64          `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID      int64          `db:"company_id"      gorm:"column:company_id;not null;index"`
	PlanType       string         `db:"plan_type"       gorm:"column:plan_type;not null;default:free"`
	Status         string         `db:"status"          gorm:"column:status;not null;default:active"`
	StartsAt       time.Time      `db:"starts_at"       gorm:"column:starts_at"`
	ExpiresAt      *time.Time     `db:"expires_at"      gorm:"column:expires_at"`
	RemoveBranding bool           `db:"remove_branding" gorm:"column:remove_branding;not null;default:false"`
	Limits         map[string]int `db:"limits"          gorm:"column:limits;serializer:json"`
}

func (SubscriptionEntity) TableName() string {
	return "subscriptions"
}

func toSubscriptionEntity(m *model.Subscription) *SubscriptionEntity {
	if m == nil {
		return nil
	}
	return &SubscriptionEntity{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		PlanType:       m.PlanType,
		Status:         string(m.Status),
		StartsAt:       m.StartsAt,
		ExpiresAt:      m.ExpiresAt,
		RemoveBranding: m.RemoveBranding,
		Limits:         m.Limits,
	}
}

func toSubscriptionModel(e *SubscriptionEntity) *model.Subscription {
	if e == nil {
		return nil
	}
	return &model.Subscription{
		ID:             e.ID,
		CompanyID:      e.CompanyID,
		PlanType:       e.PlanType,
		Status:         model.SubscriptionStatus(e.Status),
		StartsAt:       e.StartsAt,
		ExpiresAt:      e.ExpiresAt,
		RemoveBranding: e.RemoveBranding,
		Limits:         e.Limits,
	}
}
