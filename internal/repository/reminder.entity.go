package repository

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

type ReminderEntity struct {
	ID             int64                `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	CustomerID     int64                `db:"customer_id"     gorm:"column:customer_id;not null;index"`
	TemplateID     int64                `db:"template_id"     gorm:"column:template_id;not null"`
	StartAt        time.Time            `db:"start_at"        gorm:"column:start_at;not null"`
	NextRunAt      time.Time            `db:"next_run_at"     gorm:"column:next_run_at;not null;index"`
	Active         bool                 `db:"active"          gorm:"column:active;not null;default:true"`
	RecurrenceRule model.RecurrenceRule `db:"recurrence_rule" gorm:"column:recurrence_rule;serializer:json"`
	CreatedAt      time.Time            `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
}

func (ReminderEntity) TableName() string {
	return "reminders"
}

func toReminderEntity(m *model.Reminder) *ReminderEntity {
	if m == nil {
		return nil
	}
	return &ReminderEntity{
		ID:             m.ID,
		CustomerID:     m.CustomerID,
		TemplateID:     m.TemplateID,
		StartAt:        m.StartAt,
		NextRunAt:      m.NextRunAt,
		Active:         m.Active,
		RecurrenceRule: m.RecurrenceRule,
		CreatedAt:      m.CreatedAt,
	}
}

func toReminderModel(e *ReminderEntity) *model.Reminder {
	if e == nil {
		return nil
	}
	return &model.Reminder{
		ID:             e.ID,
		CustomerID:     e.CustomerID,
		TemplateID:     e.TemplateID,
		StartAt:        e.StartAt,
		NextRunAt:      e.NextRunAt,
		Active:         e.Active,
		RecurrenceRule: e.RecurrenceRule,
		CreatedAt:      e.CreatedAt,
	}
}

func toReminderModels(entities []*ReminderEntity) []*model.Reminder {
	if entities == nil {
		return nil
	}
	models := make([]*model.Reminder, len(entities))
	for i, e := range entities {
		models[i] = toReminderModel(e)
	}
	return models
}
