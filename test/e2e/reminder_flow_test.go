package e2e

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/emailzus/reminder-engine/internal/dispatch"
	"github.com/emailzus/reminder-engine/internal/engine"
	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/internal/repository"
	"github.com/emailzus/reminder-engine/internal/services"
	"github.com/emailzus/reminder-engine/pkg/pg"
	"github.com/emailzus/reminder-engine/pkg/redis"
	"github.com/emailzus/reminder-engine/test/fixtures"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB = pg.DB

type recordingEmailSender struct {
	sent []*dispatch.EmailMessage
	err  error
}

func (r *recordingEmailSender) SendEmail(ctx context.Context, msg *dispatch.EmailMessage) (*dispatch.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, msg)
	return &dispatch.Result{ProviderID: fmt.Sprintf("msg-%d", len(r.sent))}, nil
}

type recordingSMSSender struct {
	sent []*dispatch.SMSMessage
	err  error
}

func (r *recordingSMSSender) SendSMS(ctx context.Context, msg *dispatch.SMSMessage) (*dispatch.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, msg)
	return &dispatch.Result{ProviderID: fmt.Sprintf("SM%d", len(r.sent))}, nil
}

type TestEnvironment struct {
	DB               *pg.DB
	Redis            *miniredis.Miniredis
	CompanyRepo      *repository.CompanyRepository
	CustomerRepo     *repository.CustomerRepository
	TemplateRepo     *repository.TemplateRepository
	SubscriptionRepo *repository.SubscriptionRepository
	ReminderRepo     *repository.ReminderRepository
	LogRepo          *repository.DeliveryLogRepository
	ReminderService  *services.ReminderService
	TemplateService  *services.TemplateService
	Email            *recordingEmailSender
	SMS              *recordingSMSSender
	Sweep            *engine.Sweep
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.CompanyEntity{},
		&repository.CustomerEntity{},
		&repository.TemplateEntity{},
		&repository.SubscriptionEntity{},
		&repository.ReminderEntity{},
		&repository.DeliveryLogEntity{},
	)
	require.NoError(t, err)

	pgDB := &testDB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	companyRepo := repository.NewCompanyRepository(pgDB)
	customerRepo := repository.NewCustomerRepository(pgDB)
	templateRepo := repository.NewTemplateRepository(pgDB)
	subscriptionRepo := repository.NewSubscriptionRepository(pgDB)
	reminderRepo := repository.NewReminderRepository(pgDB)
	logRepo := repository.NewDeliveryLogRepository(pgDB)

	email := &recordingEmailSender{}
	sms := &recordingSMSSender{}

	sweep := engine.NewSweep(engine.SweepConfig{
		Reminders: reminderRepo,
		Logs:      logRepo,
		Quota:     engine.NewQuotaGate(logRepo),
		Renderer:  &engine.Renderer{AssetBaseURL: "https://assets.example.com"},
		Email:     email,
		SMS:       sms,
		Claims:    engine.NewClaims(redisAdapter, 24*time.Hour),
	})

	return &TestEnvironment{
		DB:               pgDB,
		Redis:            mr,
		CompanyRepo:      companyRepo,
		CustomerRepo:     customerRepo,
		TemplateRepo:     templateRepo,
		SubscriptionRepo: subscriptionRepo,
		ReminderRepo:     reminderRepo,
		LogRepo:          logRepo,
		ReminderService:  services.NewReminderService(reminderRepo, customerRepo, templateRepo),
		TemplateService:  services.NewTemplateService(templateRepo, subscriptionRepo),
		Email:            email,
		SMS:              sms,
		Sweep:            sweep,
	}
}

func (env *TestEnvironment) Cleanup() {
	if env.Redis != nil {
		env.Redis.Close()
	}
}

// seedEmailSetup inserts a company, an email customer, and an email template.
func seedEmailSetup(t *testing.T, env *TestEnvironment) (*model.Customer, *model.Template) {
	ctx := context.Background()

	company := fixtures.TestCompany
	_, err := env.CompanyRepo.Create(ctx, &company)
	require.NoError(t, err)

	customer, err := env.CustomerRepo.Create(ctx, fixtures.NewTestCustomer(company.ID, "Jane Miller", "jane@example.com"))
	require.NoError(t, err)

	template, err := env.TemplateRepo.Create(ctx, fixtures.NewTestTemplate(company.ID,
		model.ChannelEmail, "Checkup due", "Hi {{customer.name}}, your appointment with {{company.name}} is coming up."))
	require.NoError(t, err)

	return customer, template
}

func TestE2E_ReminderCreationAndSweep(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	customer, template := seedEmailSetup(t, env)

	start := time.Now().Add(-time.Minute)
	rem, err := env.ReminderService.Create(ctx, fixtures.NewTestReminderRequest(customer.ID, template.ID, start, model.FrequencyDaily))
	require.NoError(t, err)
	assert.NotZero(t, rem.ID)
	assert.True(t, rem.Active)
	assert.Equal(t, start.Unix(), rem.NextRunAt.Unix())

	result, err := env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)

	require.Len(t, env.Email.sent, 1)
	msg := env.Email.sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Reminder: Checkup due", msg.Subject)
	assert.Contains(t, msg.HTML, "Jane Miller")
	assert.Contains(t, msg.HTML, "Acme Dental")
	assert.Contains(t, msg.HTML, "Powered by")

	logs, _, err := env.LogRepo.ListByCompany(ctx, customer.CompanyID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.DeliveryStatusSent, logs[0].Status)
	assert.Equal(t, model.ChannelEmail, logs[0].Channel)
	assert.True(t, logs[0].Automated)
	assert.NotNil(t, logs[0].SentAt)

	updated, err := env.ReminderRepo.Get(ctx, rem.ID)
	require.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Greater(t, updated.NextRunAt.Unix(), rem.NextRunAt.Unix())
}

func TestE2E_OneTimeReminderDeactivates(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	customer, template := seedEmailSetup(t, env)

	rem, err := env.ReminderService.Create(ctx, fixtures.NewTestReminderRequest(
		customer.ID, template.ID, time.Now().Add(-time.Minute), model.FrequencyOneTime))
	require.NoError(t, err)

	result, err := env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, env.Email.sent, 1)

	updated, err := env.ReminderRepo.Get(ctx, rem.ID)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	// deactivated reminders never come back
	result, err = env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Len(t, env.Email.sent, 1)
}

func TestE2E_QuotaSuppression(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	customer, template := seedEmailSetup(t, env)

	expiry := time.Now().AddDate(0, 1, 0)
	sub := fixtures.ActiveSubscription(customer.CompanyID, "starter", expiry)
	sub.Limits = map[string]int{model.LimitEmailsPerMonth: 1}
	_, err := env.SubscriptionRepo.Create(ctx, sub)
	require.NoError(t, err)

	// the one allowed send for this month is already used up
	sentAt := time.Now().Add(-time.Hour)
	_, err = env.LogRepo.Create(ctx, &model.DeliveryLog{
		CompanyID:   customer.CompanyID,
		CustomerID:  customer.ID,
		TemplateID:  template.ID,
		Channel:     model.ChannelEmail,
		Destination: customer.Email,
		Status:      model.DeliveryStatusSent,
		Automated:   true,
		SentAt:      &sentAt,
	})
	require.NoError(t, err)

	rem, err := env.ReminderService.Create(ctx, fixtures.NewTestReminderRequest(
		customer.ID, template.ID, time.Now().Add(-time.Minute), model.FrequencyDaily))
	require.NoError(t, err)

	result, err := env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)
	assert.Empty(t, env.Email.sent)

	// suppression leaves no log row, only the pre-existing one remains
	logs, _, err := env.LogRepo.ListByCompany(ctx, customer.CompanyID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	// the reminder still advances so it does not re-fire every sweep
	updated, err := env.ReminderRepo.Get(ctx, rem.ID)
	require.NoError(t, err)
	assert.Greater(t, updated.NextRunAt.Unix(), rem.NextRunAt.Unix())
}

func TestE2E_DuplicateDispatchSuppressedByClaim(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	customer, template := seedEmailSetup(t, env)

	rem, err := env.ReminderService.Create(ctx, fixtures.NewTestReminderRequest(
		customer.ID, template.ID, time.Now().Add(-time.Minute), model.FrequencyDaily))
	require.NoError(t, err)

	result, err := env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	require.Len(t, env.Email.sent, 1)

	// roll the schedule back as if the advancement write had been lost
	rolledBack := *rem
	require.NoError(t, env.ReminderRepo.Update(ctx, &rolledBack))

	result, err = env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)

	// same reminder, channel and scheduled time: the claim blocks the resend
	assert.Len(t, env.Email.sent, 1)
	logs, _, err := env.LogRepo.ListByCompany(ctx, customer.CompanyID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestE2E_SMSFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	company := fixtures.TestCompanyNoEmail
	_, err := env.CompanyRepo.Create(ctx, &company)
	require.NoError(t, err)

	customer, err := env.CustomerRepo.Create(ctx, fixtures.NewTestSMSCustomer(company.ID, "Sam Ortiz", "(415) 555-2671"))
	require.NoError(t, err)

	template, err := env.TemplateRepo.Create(ctx, fixtures.NewTestTemplate(company.ID,
		model.ChannelSMS, "Haircut", "Hi {{customer.name}}, see you soon at {{company.name}}."))
	require.NoError(t, err)

	_, err = env.ReminderService.Create(ctx, fixtures.NewTestReminderRequest(
		customer.ID, template.ID, time.Now().Add(-time.Minute), model.FrequencyWeekly))
	require.NoError(t, err)

	result, err := env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, env.Email.sent)
	require.Len(t, env.SMS.sent, 1)

	msg := env.SMS.sent[0]
	assert.Equal(t, "+14155552671", msg.To)
	assert.Contains(t, msg.Body, "Sam Ortiz")
	assert.Contains(t, msg.Body, "Powered by")

	logs, _, err := env.LogRepo.ListByCompany(ctx, company.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ChannelSMS, logs[0].Channel)
	assert.Equal(t, "+14155552671", logs[0].Destination)
}

func TestE2E_ProviderFailureLogged(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	customer, template := seedEmailSetup(t, env)

	env.Email.err = fmt.Errorf("upstream 500")

	rem, err := env.ReminderService.Create(ctx, fixtures.NewTestReminderRequest(
		customer.ID, template.ID, time.Now().Add(-time.Minute), model.FrequencyDaily))
	require.NoError(t, err)

	result, err := env.Sweep.ProcessDueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Errors)

	logs, _, err := env.LogRepo.ListByCompany(ctx, customer.CompanyID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.DeliveryStatusFailed, logs[0].Status)
	assert.Contains(t, logs[0].Response, "upstream 500")
	assert.Nil(t, logs[0].SentAt)

	// failed dispatch must not stall the schedule
	updated, err := env.ReminderRepo.Get(ctx, rem.ID)
	require.NoError(t, err)
	assert.Greater(t, updated.NextRunAt.Unix(), rem.NextRunAt.Unix())
}

func TestE2E_TemplateLimitEnforced(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	company := fixtures.TestCompany
	_, err := env.CompanyRepo.Create(ctx, &company)
	require.NoError(t, err)

	for i := 0; i < model.DefaultFreeTemplateLimit; i++ {
		_, err := env.TemplateService.Create(ctx, model.TemplateCreateRequest{
			CompanyID: company.ID,
			Channel:   model.ChannelEmail,
			Title:     fmt.Sprintf("Template %d", i),
			Body:      "Hello {{customer.name}}",
		})
		require.NoError(t, err)
	}

	_, err = env.TemplateService.Create(ctx, model.TemplateCreateRequest{
		CompanyID: company.ID,
		Channel:   model.ChannelEmail,
		Title:     "One too many",
		Body:      "Hello {{customer.name}}",
	})
	assert.ErrorIs(t, err, services.ErrTemplateLimitReached)
}
