package services

import (
	"context"
	"errors"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/internal/repository"
)

var ErrTemplateLimitReached = errors.New("template limit reached for current plan")

type TemplateStore interface {
	Create(ctx context.Context, tpl *model.Template) (*model.Template, error)
	CountByCompany(ctx context.Context, companyID int64) (int64, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*model.Template, error)
}

type SubscriptionStore interface {
	GetByCompany(ctx context.Context, companyID int64) (*model.Subscription, error)
}

type TemplateService struct {
	templateRepo     TemplateStore
	subscriptionRepo SubscriptionStore
}

func NewTemplateService(templateRepo TemplateStore, subscriptionRepo SubscriptionStore) *TemplateService {
	return &TemplateService{
		templateRepo:     templateRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// Create enforces the per-plan template count limit before storing. No
// subscription row means the free tier.
func (s *TemplateService) Create(ctx context.Context, p model.TemplateCreateRequest) (*model.Template, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	limit := model.DefaultFreeTemplateLimit
	sub, err := s.subscriptionRepo.GetByCompany(ctx, p.CompanyID)
	if err != nil && !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, err
	}
	if sub != nil && sub.IsActive(time.Now()) {
		limit = sub.TemplateLimit()
	}

	count, err := s.templateRepo.CountByCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if count >= int64(limit) {
		return nil, ErrTemplateLimitReached
	}

	return s.templateRepo.Create(ctx, &model.Template{
		CompanyID:   p.CompanyID,
		Channel:     p.Channel,
		Title:       p.Title,
		Body:        p.Body,
		Attachments: p.Attachments,
	})
}

func (s *TemplateService) List(ctx context.Context, companyID int64) ([]*model.Template, error) {
	return s.templateRepo.ListByCompany(ctx, companyID)
}
