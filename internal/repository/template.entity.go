package repository

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

type TemplateEntity struct {
	ID          int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID   int64     `db:"company_id"  gorm:"column:company_id;not null;index"`
	Channel     string    `db:"channel"     gorm:"column:channel;not null"`
	Title       string    `db:"title"       gorm:"column:title;not null"`
	Body        string    `db:"body"        gorm:"column:body;not null"`
	Attachments []string  `db:"attachments" gorm:"column:attachments;serializer:json"`
	CreatedAt   time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (TemplateEntity) TableName() string {
	return "templates"
}

func toTemplateEntity(m *model.Template) *TemplateEntity {
	if m == nil {
		return nil
	}
	return &TemplateEntity{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Channel:     string(m.Channel),
		Title:       m.Title,
		Body:        m.Body,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
	}
}

func toTemplateModel(e *TemplateEntity) *model.Template {
	if e == nil {
		return nil
	}
	return &model.Template{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		Channel:     model.Channel(e.Channel),
		Title:       e.Title,
		Body:        e.Body,
		Attachments: e.Attachments,
		CreatedAt:   e.CreatedAt,
	}
}

func toTemplateModels(entities []*TemplateEntity) []*model.Template {
	if entities == nil {
		return nil
	}
	models := make([]*model.Template, len(entities))
	for i, e := range entities {
		models[i] = toTemplateModel(e)
	}
	return models
}
