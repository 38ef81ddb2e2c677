package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/pkg/pg"
	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository struct {
	*pg.DB
}

func NewSubscriptionRepository(db *pg.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		db,
	}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	entity := toSubscriptionEntity(sub)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toSubscriptionModel(entity), nil
}

// GetByCompany returns the company's subscription, or ErrSubscriptionNotFound
// when the company has never subscribed. Callers treat the latter as the
// free tier, not as a failure.
func (r *SubscriptionRepository) GetByCompany(ctx context.Context, companyID int64) (*model.Subscription, error) {
	var entity SubscriptionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	return toSubscriptionModel(&entity), nil
}

// ExpireOverdue marks active subscriptions past their expiry as expired and
// drops their branding removal. Returns the number of rows changed.
func (r *SubscriptionRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.Write(ctx).WithContext(ctx).
		Model(&SubscriptionEntity{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", model.SubscriptionActive, now).
		Updates(map[string]interface{}{
			"status":          string(model.SubscriptionExpired),
			"remove_branding": false,
		})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
