package repository

import (
	"context"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/pkg/pg"
)

type DeliveryLogRepository struct {
	*pg.DB
}

func NewDeliveryLogRepository(db *pg.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{
		db,
	}
}

// Create appends one dispatch attempt row. Logs are write-once: there are no
// update or delete methods on this repository.
func (r *DeliveryLogRepository) Create(ctx context.Context, log *model.DeliveryLog) (*model.DeliveryLog, error) {
	entity := toDeliveryLogEntity(log)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toDeliveryLogModel(entity), nil
}

// CountSent counts successful sends for a company and channel inside
// [from, to). The sweep passes a calendar-month window so quota counters
// reset naturally at month boundaries, including across year ends.
func (r *DeliveryLogRepository) CountSent(ctx context.Context, companyID int64, channel model.Channel, from, to time.Time) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&DeliveryLogEntity{}).
		Where("company_id = ? AND channel = ? AND status = ? AND sent_at >= ? AND sent_at < ?",
			companyID, string(channel), string(model.DeliveryStatusSent), from, to).
		Count(&count).
		Error

	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *DeliveryLogRepository) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*model.DeliveryLog, int64, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&DeliveryLogEntity{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entities []*DeliveryLogEntity
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toDeliveryLogModels(entities), total, nil
}
