package repository

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

type DeliveryLogEntity struct {
	ID          int64      `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID   int64      `db:"company_id"  gorm:"column:company_id;not null;index:idx_delivery_logs_quota"`
	CustomerID  int64      `db:"customer_id" gorm:"column:customer_id;not null"`
	TemplateID  int64      `db:"template_id" gorm:"column:template_id;not null"`
	Channel     string     `db:"channel"     gorm:"column:channel;not null;index:idx_delivery_logs_quota"`
	Destination string     `db:"destination" gorm:"column:destination;not null"`
	Subject     string     `db:"subject"     gorm:"column:subject"`
	Message     string     `db:"message"     gorm:"column:message"`
	Status      string     `db:"status"      gorm:"column:status;not null"`
	ProviderID  string     `db:"provider_id" gorm:"column:provider_id"`
	Response    string     `db:"response"    gorm:"column:response"`
	Automated   bool       `db:"automated"   gorm:"column:automated;not null;default:false"`
	SentAt      *time.Time `db:"sent_at"     gorm:"column:sent_at;index:idx_delivery_logs_quota"`
	CreatedAt   time.Time  `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryLogEntity) TableName() string {
	return "delivery_logs"
}

func toDeliveryLogEntity(m *model.DeliveryLog) *DeliveryLogEntity {
	if m == nil {
		return nil
	}
	return &DeliveryLogEntity{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		CustomerID:  m.CustomerID,
		TemplateID:  m.TemplateID,
		Channel:     string(m.Channel),
		Destination: m.Destination,
		Subject:     m.Subject,
		Message:     m.Message,
		Status:      string(m.Status),
		ProviderID:  m.ProviderID,
		Response:    m.Response,
		Automated:   m.Automated,
		SentAt:      m.SentAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toDeliveryLogModel(e *DeliveryLogEntity) *model.DeliveryLog {
	if e == nil {
		return nil
	}
	return &model.DeliveryLog{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		CustomerID:  e.CustomerID,
		TemplateID:  e.TemplateID,
		Channel:     model.Channel(e.Channel),
		Destination: e.Destination,
		Subject:     e.Subject,
		Message:     e.Message,
		Status:      model.DeliveryStatus(e.Status),
		ProviderID:  e.ProviderID,
		Response:    e.Response,
		Automated:   e.Automated,
		SentAt:      e.SentAt,
		CreatedAt:   e.CreatedAt,
	}
}

func toDeliveryLogModels(entities []*DeliveryLogEntity) []*model.DeliveryLog {
	if entities == nil {
		return nil
	}
	models := make([]*model.DeliveryLog, len(entities))
	for i, e := range entities {
		models[i] = toDeliveryLogModel(e)
	}
	return models
}
