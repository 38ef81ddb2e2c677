package repository

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

type CustomerEntity struct {
	ID           int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID    int64     `db:"company_id"   gorm:"column:company_id;not null;index"`
	Name         string    `db:"name"         gorm:"column:name;not null"`
	Email        string    `db:"email"        gorm:"column:email"`
	Phone        string    `db:"phone"        gorm:"column:phone"`
	Address      string    `db:"address"      gorm:"column:address"`
	Country      string    `db:"country"      gorm:"column:country"`
	Notification string    `db:"notification" gorm:"column:notification;not null;default:email"`
	SMSOptIn     bool      `db:"sms_opt_in"   gorm:"column:sms_opt_in;not null;default:false"`
	TemplateID   *int64    `db:"template_id"  gorm:"column:template_id"`
	Frequency    *string   `db:"frequency"    gorm:"column:frequency"`
	CreatedAt    time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	e := &CustomerEntity{
		ID:           m.ID,
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Address:      m.Address,
		Country:      m.Country,
		Notification: string(m.Notification),
		SMSOptIn:     m.SMSOptIn,
		TemplateID:   m.TemplateID,
		CreatedAt:    m.CreatedAt,
	}
	if m.Frequency != nil {
		f := string(*m.Frequency)
		e.Frequency = &f
	}
	return e
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	m := &model.Customer{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		Name:         e.Name,
		Email:        e.Email,
		Phone:        e.Phone,
		Address:      e.Address,
		Country:      e.Country,
		Notification: model.NotificationPreference(e.Notification),
		SMSOptIn:     e.SMSOptIn,
		TemplateID:   e.TemplateID,
		CreatedAt:    e.CreatedAt,
	}
	if e.Frequency != nil {
		f := model.Frequency(*e.Frequency)
		m.Frequency = &f
	}
	return m
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	if entities == nil {
		return nil
	}
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
