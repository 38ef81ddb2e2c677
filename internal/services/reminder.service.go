package services

import (
	"context"
	"errors"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/internal/repository"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateMismatch = errors.New("template belongs to a different company")
)

type ReminderRepository interface {
	Create(ctx context.Context, rem *model.Reminder) (*model.Reminder, error)
	Get(ctx context.Context, id int64) (*model.Reminder, error)
	List(ctx context.Context, f model.ReminderFilter) ([]*model.Reminder, int64, error)
}

type CustomerRepository interface {
	Get(ctx context.Context, id int64) (*model.Customer, error)
}

type TemplateRepository interface {
	Get(ctx context.Context, id int64) (*model.Template, error)
}

// ReminderService owns the administrative reminder lifecycle: validated
// creation and listing. Sweeping is the engine's job, not this service's.
type ReminderService struct {
	reminderRepo ReminderRepository
	customerRepo CustomerRepository
	templateRepo TemplateRepository
}

func NewReminderService(reminderRepo ReminderRepository, customerRepo CustomerRepository, templateRepo TemplateRepository) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		customerRepo: customerRepo,
		templateRepo: templateRepo,
	}
}

// Create validates the request, checks referential ownership, and stores the
// reminder active with next_run_at = start_date. Notification rules are
// parsed here so malformed rule text is rejected at write time instead of
// silently never matching.
func (s *ReminderService) Create(ctx context.Context, p model.ReminderCreateRequest) (*model.Reminder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.Get(ctx, p.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	template, err := s.templateRepo.Get(ctx, p.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.CompanyID != customer.CompanyID {
		return nil, ErrTemplateMismatch
	}

	reminder := &model.Reminder{
		CustomerID: p.CustomerID,
		TemplateID: p.TemplateID,
		StartAt:    p.StartDate,
		NextRunAt:  p.StartDate,
		Active:     true,
		RecurrenceRule: model.RecurrenceRule{
			Frequency:         p.Frequency,
			ExpiresAt:         p.ExpiresAt,
			NotificationRules: p.NotificationRules,
		},
	}

	return s.reminderRepo.Create(ctx, reminder)
}

func (s *ReminderService) Get(ctx context.Context, id int64) (*model.Reminder, error) {
	reminder, err := s.reminderRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReminderNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}
	return reminder, nil
}

func (s *ReminderService) List(ctx context.Context, f model.ReminderFilter) ([]*model.Reminder, int64, error) {
	return s.reminderRepo.List(ctx, f)
}
