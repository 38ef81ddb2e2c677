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

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Create(ctx context.Context, rem *model.Reminder) (*model.Reminder, error) {
	args := m.Called(ctx, rem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) Get(ctx context.Context, id int64) (*model.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) List(ctx context.Context, f model.ReminderFilter) ([]*model.Reminder, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Reminder), args.Get(1).(int64), args.Error(2)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func validRequest() model.ReminderCreateRequest {
	return model.ReminderCreateRequest{
		CustomerID:        1,
		TemplateID:        2,
		StartDate:         time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Frequency:         model.FrequencyWeekly,
		NotificationRules: []string{"2 days before", "on date"},
	}
}

func newServiceWithMocks() (*ReminderService, *MockReminderRepository, *MockCustomerRepository, *MockTemplateRepository) {
	remRepo := new(MockReminderRepository)
	custRepo := new(MockCustomerRepository)
	tplRepo := new(MockTemplateRepository)
	return NewReminderService(remRepo, custRepo, tplRepo), remRepo, custRepo, tplRepo
}

func TestReminderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active reminder scheduled at start date", func(t *testing.T) {
		svc, remRepo, custRepo, tplRepo := newServiceWithMocks()
		custRepo.On("Get", ctx, int64(1)).Return(&model.Customer{ID: 1, CompanyID: 10}, nil)
		tplRepo.On("Get", ctx, int64(2)).Return(&model.Template{ID: 2, CompanyID: 10}, nil)
		remRepo.On("Create", ctx, mock.AnythingOfType("*model.Reminder")).Return(&model.Reminder{ID: 5}, nil)

		created, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(5), created.ID)

		stored := remRepo.Calls[0].Arguments.Get(1).(*model.Reminder)
		assert.True(t, stored.Active)
		assert.Equal(t, stored.StartAt, stored.NextRunAt)
		assert.Equal(t, model.FrequencyWeekly, stored.RecurrenceRule.Frequency)
	})

	t.Run("rejects unknown frequency", func(t *testing.T) {
		svc, _, _, _ := newServiceWithMocks()
		req := validRequest()
		req.Frequency = "Hourly"

		_, err := svc.Create(ctx, req)
		assert.Error(t, err)
	})

	t.Run("rejects expiry at or before start", func(t *testing.T) {
		svc, _, _, _ := newServiceWithMocks()
		req := validRequest()
		expires := req.StartDate
		req.ExpiresAt = &expires

		_, err := svc.Create(ctx, req)
		assert.Error(t, err)
	})

	t.Run("rejects malformed notification rules at write time", func(t *testing.T) {
		svc, _, _, _ := newServiceWithMocks()
		req := validRequest()
		req.NotificationRules = []string{"2 days before", "whenever"}

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, model.ErrInvalidNotificationRule)
	})

	t.Run("missing customer", func(t *testing.T) {
		svc, _, custRepo, _ := newServiceWithMocks()
		custRepo.On("Get", ctx, int64(1)).Return(nil, repository.ErrCustomerNotFound)

		_, err := svc.Create(ctx, validRequest())
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("template owned by another company", func(t *testing.T) {
		svc, _, custRepo, tplRepo := newServiceWithMocks()
		custRepo.On("Get", ctx, int64(1)).Return(&model.Customer{ID: 1, CompanyID: 10}, nil)
		tplRepo.On("Get", ctx, int64(2)).Return(&model.Template{ID: 2, CompanyID: 99}, nil)

		_, err := svc.Create(ctx, validRequest())
		assert.ErrorIs(t, err, ErrTemplateMismatch)
	})
}

func TestReminderService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("missing reminder maps to the service sentinel", func(t *testing.T) {
		svc, remRepo, _, _ := newServiceWithMocks()
		remRepo.On("Get", ctx, int64(99)).Return(nil, repository.ErrReminderNotFound)

		_, err := svc.Get(ctx, 99)
		assert.ErrorIs(t, err, ErrReminderNotFound)
	})

	t.Run("found", func(t *testing.T) {
		svc, remRepo, _, _ := newServiceWithMocks()
		remRepo.On("Get", ctx, int64(3)).Return(&model.Reminder{ID: 3}, nil)

		got, err := svc.Get(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
	})
}

func TestReminderService_List(t *testing.T) {
	ctx := context.Background()
	svc, remRepo, _, _ := newServiceWithMocks()

	filter := model.ReminderFilter{Limit: 10}
	remRepo.On("List", ctx, filter).Return([]*model.Reminder{{ID: 1}, {ID: 2}}, int64(2), nil)

	reminders, total, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, reminders, 2)
}
