package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/pkg/pg"
	"gorm.io/gorm"
)

var ErrReminderNotFound = errors.New("reminder not found")

type ReminderRepository struct {
	*pg.DB
}

func NewReminderRepository(db *pg.DB) *ReminderRepository {
	return &ReminderRepository{
		db,
	}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) (*model.Reminder, error) {
	entity := toReminderEntity(reminder)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toReminderModel(entity), nil
}

func (r *ReminderRepository) Get(ctx context.Context, id int64) (*model.Reminder, error) {
	var entity ReminderEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}

	return toReminderModel(&entity), nil
}

func (r *ReminderRepository) List(ctx context.Context, f model.ReminderFilter) ([]*model.Reminder, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ReminderEntity{})

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "next_run_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ReminderEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toReminderModels(entities), total, nil
}

// Update persists the mutable scheduling fields after an advancement:
// next_run_at, active and the recurrence rule blob.
func (r *ReminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ReminderEntity{}).
		Where("id = ?", reminder.ID).
		Updates(map[string]interface{}{
			"next_run_at":     reminder.NextRunAt,
			"active":          reminder.Active,
			"recurrence_rule": toReminderEntity(reminder).RecurrenceRule,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// ListDue loads every active reminder whose next_run_at has passed, together
// with the customer, template, company and subscription the sweep needs.
// Reminders pointing at missing customers or templates are skipped rather
// than failing the whole batch.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]*model.DueReminder, error) {
	var reminders []*ReminderEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("active = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Find(&reminders).
		Error

	if err != nil {
		return nil, err
	}

	if len(reminders) == 0 {
		return nil, nil
	}

	customerIDs := make([]int64, 0, len(reminders))
	templateIDs := make([]int64, 0, len(reminders))
	for _, rem := range reminders {
		customerIDs = append(customerIDs, rem.CustomerID)
		templateIDs = append(templateIDs, rem.TemplateID)
	}

	customers, err := r.loadCustomers(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	templates, err := r.loadTemplates(ctx, templateIDs)
	if err != nil {
		return nil, err
	}

	companyIDs := make([]int64, 0, len(customers))
	for _, c := range customers {
		companyIDs = append(companyIDs, c.CompanyID)
	}

	companies, err := r.loadCompanies(ctx, companyIDs)
	if err != nil {
		return nil, err
	}
	subscriptions, err := r.loadSubscriptions(ctx, companyIDs)
	if err != nil {
		return nil, err
	}

	due := make([]*model.DueReminder, 0, len(reminders))
	for _, rem := range reminders {
		customer, ok := customers[rem.CustomerID]
		if !ok {
			continue
		}
		template, ok := templates[rem.TemplateID]
		if !ok {
			continue
		}
		company, ok := companies[customer.CompanyID]
		if !ok {
			continue
		}
		due = append(due, &model.DueReminder{
			Reminder:     toReminderModel(rem),
			Customer:     toCustomerModel(customer),
			Template:     toTemplateModel(template),
			Company:      toCompanyModel(company),
			Subscription: toSubscriptionModel(subscriptions[customer.CompanyID]),
		})
	}

	return due, nil
}

func (r *ReminderRepository) loadCustomers(ctx context.Context, ids []int64) (map[int64]*CustomerEntity, error) {
	var entities []*CustomerEntity
	if err := r.Read(ctx).WithContext(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*CustomerEntity, len(entities))
	for _, e := range entities {
		out[e.ID] = e
	}
	return out, nil
}

func (r *ReminderRepository) loadTemplates(ctx context.Context, ids []int64) (map[int64]*TemplateEntity, error) {
	var entities []*TemplateEntity
	if err := r.Read(ctx).WithContext(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*TemplateEntity, len(entities))
	for _, e := range entities {
		out[e.ID] = e
	}
	return out, nil
}

func (r *ReminderRepository) loadCompanies(ctx context.Context, ids []int64) (map[int64]*CompanyEntity, error) {
	var entities []*CompanyEntity
	if err := r.Read(ctx).WithContext(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*CompanyEntity, len(entities))
	for _, e := range entities {
		out[e.ID] = e
	}
	return out, nil
}

func (r *ReminderRepository) loadSubscriptions(ctx context.Context, companyIDs []int64) (map[int64]*SubscriptionEntity, error) {
	var entities []*SubscriptionEntity
	if err := r.Read(ctx).WithContext(ctx).Where("company_id IN ?", companyIDs).Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*SubscriptionEntity, len(entities))
	for _, e := range entities {
		// keep the newest row per company
		out[e.CompanyID] = e
	}
	return out, nil
}
