package services

import (
	"context"
	"testing"
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTemplateStore struct {
	mock.Mock
}

func (m *MockTemplateStore) Create(ctx context.Context, tpl *model.Template) (*model.Template, error) {
	args := m.Called(ctx, tpl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateStore) CountByCompany(ctx context.Context, companyID int64) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTemplateStore) ListByCompany(ctx context.Context, companyID int64) ([]*model.Template, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Template), args.Error(1)
}

type MockSubscriptionStore struct {
	mock.Mock
}

func (m *MockSubscriptionStore) GetByCompany(ctx context.Context, companyID int64) (*model.Subscription, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func validTemplateRequest() model.TemplateCreateRequest {
	return model.TemplateCreateRequest{
		CompanyID: 1,
		Channel:   model.ChannelEmail,
		Title:     "Payment due",
		Body:      "Hello {{customer.name}}",
	}
}

func TestTemplateService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("free tier allows up to three templates", func(t *testing.T) {
		tplStore := new(MockTemplateStore)
		subStore := new(MockSubscriptionStore)
		svc := NewTemplateService(tplStore, subStore)

		subStore.On("GetByCompany", ctx, int64(1)).Return(nil, repository.ErrSubscriptionNotFound)
		tplStore.On("CountByCompany", ctx, int64(1)).Return(int64(2), nil)
		tplStore.On("Create", ctx, mock.AnythingOfType("*model.Template")).Return(&model.Template{ID: 3}, nil)

		created, err := svc.Create(ctx, validTemplateRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(3), created.ID)
	})

	t.Run("free tier denies a fourth template", func(t *testing.T) {
		tplStore := new(MockTemplateStore)
		subStore := new(MockSubscriptionStore)
		svc := NewTemplateService(tplStore, subStore)

		subStore.On("GetByCompany", ctx, int64(1)).Return(nil, repository.ErrSubscriptionNotFound)
		tplStore.On("CountByCompany", ctx, int64(1)).Return(int64(3), nil)

		_, err := svc.Create(ctx, validTemplateRequest())
		assert.ErrorIs(t, err, ErrTemplateLimitReached)
	})

	t.Run("active paid subscription lifts the limit", func(t *testing.T) {
		tplStore := new(MockTemplateStore)
		subStore := new(MockSubscriptionStore)
		svc := NewTemplateService(tplStore, subStore)

		future := time.Now().Add(24 * time.Hour)
		subStore.On("GetByCompany", ctx, int64(1)).Return(&model.Subscription{
			PlanType:  "pro",
			Status:    model.SubscriptionActive,
			ExpiresAt: &future,
		}, nil)
		tplStore.On("CountByCompany", ctx, int64(1)).Return(int64(10), nil)
		tplStore.On("Create", ctx, mock.AnythingOfType("*model.Template")).Return(&model.Template{ID: 11}, nil)

		_, err := svc.Create(ctx, validTemplateRequest())
		assert.NoError(t, err)
	})

	t.Run("expired subscription falls back to the free limit", func(t *testing.T) {
		tplStore := new(MockTemplateStore)
		subStore := new(MockSubscriptionStore)
		svc := NewTemplateService(tplStore, subStore)

		subStore.On("GetByCompany", ctx, int64(1)).Return(&model.Subscription{
			PlanType: "pro",
			Status:   model.SubscriptionExpired,
		}, nil)
		tplStore.On("CountByCompany", ctx, int64(1)).Return(int64(3), nil)

		_, err := svc.Create(ctx, validTemplateRequest())
		assert.ErrorIs(t, err, ErrTemplateLimitReached)
	})

	t.Run("sms template with attachments is invalid", func(t *testing.T) {
		tplStore := new(MockTemplateStore)
		subStore := new(MockSubscriptionStore)
		svc := NewTemplateService(tplStore, subStore)

		req := validTemplateRequest()
		req.Channel = model.ChannelSMS
		req.Attachments = []string{"a.pdf"}

		_, err := svc.Create(ctx, req)
		assert.Error(t, err)
	})
}
