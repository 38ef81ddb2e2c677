package fixtures

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

var (
	TestCompany = model.Company{
		ID:            1,
		Name:          "Acme Dental",
		Address:       "12 Main St, Springfield",
		BusinessEmail: "office@acmedental.com",
	}

	TestCompanyNoEmail = model.Company{
		ID:   2,
		Name: "Corner Barbershop",
	}
)

func NewTestCustomer(companyID int64, name, email string) *model.Customer {
	return &model.Customer{
		CompanyID:    companyID,
		Name:         name,
		Email:        email,
		Notification: model.NotifyEmail,
		CreatedAt:    time.Now(),
	}
}

func NewTestSMSCustomer(companyID int64, name, phone string) *model.Customer {
	return &model.Customer{
		CompanyID:    companyID,
		Name:         name,
		Phone:        phone,
		Notification: model.NotifySMS,
		SMSOptIn:     true,
		CreatedAt:    time.Now(),
	}
}

func NewTestTemplate(companyID int64, channel model.Channel, title, body string) *model.Template {
	return &model.Template{
		CompanyID: companyID,
		Channel:   channel,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

func NewTestReminderRequest(customerID, templateID int64, startDate time.Time, freq model.Frequency) model.ReminderCreateRequest {
	return model.ReminderCreateRequest{
		CustomerID:        customerID,
		TemplateID:        templateID,
		StartDate:         startDate,
		Frequency:         freq,
		NotificationRules: []string{model.RuleOnDateText},
	}
}

func ActiveSubscription(companyID int64, planType string, expiresAt time.Time) *model.Subscription {
	return &model.Subscription{
		CompanyID: companyID,
		PlanType:  planType,
		Status:    model.SubscriptionActive,
		StartsAt:  time.Now().AddDate(0, -1, 0),
		ExpiresAt: &expiresAt,
	}
}

var (
	ValidNotificationRules = []string{
		"on date",
		"1 day before",
		"2 days before",
		"1 week before",
		"1 month before",
		"3 days after",
	}

	InvalidNotificationRules = []string{
		"",
		"someday",
		"2 fortnights before",
		"before 2 days",
		"-1 days before",
	}

	ValidPhoneNumbers = []string{
		"+14155552671",
		"+442071838750",
		"+61255504321",
	}

	InvalidPhoneNumbers = []string{
		"",
		"123",
		"not-a-number",
		"+",
	}
)
