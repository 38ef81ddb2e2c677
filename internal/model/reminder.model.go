package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Frequency is the fixed recurrence vocabulary. The values are stored verbatim
// inside the recurrence rule, so they must not be renamed.
type Frequency string

const (
	FrequencyDaily     Frequency = "Daily"
	FrequencyThreeDays Frequency = "3 days"
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyTwoWeeks  Frequency = "2 weeks"
	FrequencyOneTime   Frequency = "one-time"
)

// Interval returns the fixed scheduling increment for the frequency. The
// second return value is false for one-time (and unknown) frequencies, which
// never reschedule.
func (f Frequency) Interval() (time.Duration, bool) {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour, true
	case FrequencyThreeDays:
		return 3 * 24 * time.Hour, true
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, true
	case FrequencyTwoWeeks:
		return 14 * 24 * time.Hour, true
	}
	return 0, false
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyThreeDays, FrequencyWeekly, FrequencyTwoWeeks, FrequencyOneTime:
		return true
	}
	return false
}

// RuleKind tags the parsed form of a notification timing rule.
type RuleKind int

const (
	RuleOnDate RuleKind = iota
	RuleOffsetBefore
	RuleOffsetAfter
)

// NotificationRule is the parsed form of a textual timing rule such as
// "on date", "2 days before" or "1 week after". OffsetDays is always in days;
// weeks and months are converted at parse time (a month counts as 30 days,
// matching the rule vocabulary rather than calendar arithmetic).
type NotificationRule struct {
	Kind       RuleKind
	OffsetDays int
}

const RuleOnDateText = "on date"

var offsetRulePattern = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+(before|after)$`)

// ErrInvalidNotificationRule is returned for rule text outside the vocabulary.
var ErrInvalidNotificationRule = errors.New("invalid notification rule")

// ParseNotificationRule parses one rule string. Rules are validated with this
// at reminder creation; stored rows that fail to parse are treated as
// no-match at sweep time instead.
func ParseNotificationRule(s string) (NotificationRule, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == RuleOnDateText {
		return NotificationRule{Kind: RuleOnDate}, nil
	}

	m := offsetRulePattern.FindStringSubmatch(text)
	if m == nil {
		return NotificationRule{}, fmt.Errorf("%w: %q", ErrInvalidNotificationRule, s)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return NotificationRule{}, fmt.Errorf("%w: %q", ErrInvalidNotificationRule, s)
	}
	switch {
	case strings.HasPrefix(m[2], "week"):
		n *= 7
	case strings.HasPrefix(m[2], "month"):
		n *= 30
	}

	kind := RuleOffsetBefore
	if m[3] == "after" {
		kind = RuleOffsetAfter
	}
	return NotificationRule{Kind: kind, OffsetDays: n}, nil
}

// ParseNotificationRules parses all rules, failing on the first invalid one.
func ParseNotificationRules(rules []string) ([]NotificationRule, error) {
	parsed := make([]NotificationRule, 0, len(rules))
	for _, s := range rules {
		r, err := ParseNotificationRule(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, r)
	}
	return parsed, nil
}

// RecurrenceRule is the JSON blob stored on a reminder.
type RecurrenceRule struct {
	Frequency         Frequency  `json:"frequency"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	NotificationRules []string   `json:"notification_rules,omitempty"`
}

// ParsedRules returns the parseable notification rules, silently dropping any
// stored text outside the vocabulary.
func (r RecurrenceRule) ParsedRules() []NotificationRule {
	parsed := make([]NotificationRule, 0, len(r.NotificationRules))
	for _, s := range r.NotificationRules {
		if rule, err := ParseNotificationRule(s); err == nil {
			parsed = append(parsed, rule)
		}
	}
	return parsed
}

type Reminder struct {
	ID             int64          `json:"id"`
	CustomerID     int64          `json:"customer_id"`
	TemplateID     int64          `json:"template_id"`
	StartAt        time.Time      `json:"start_at"`
	NextRunAt      time.Time      `json:"next_run_at"`
	Active         bool           `json:"active"`
	RecurrenceRule RecurrenceRule `json:"recurrence_rule"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (Reminder) TableName() string { return "reminders" }

// DueReminder is a reminder eagerly joined with everything the sweep needs.
type DueReminder struct {
	Reminder     *Reminder
	Customer     *Customer
	Template     *Template
	Company      *Company
	Subscription *Subscription // nil when the company has none
}

// ReminderCreateRequest is the input of the administrative creation endpoint.
type ReminderCreateRequest struct {
	CustomerID        int64
	TemplateID        int64
	StartDate         time.Time
	Frequency         Frequency
	ExpiresAt         *time.Time
	NotificationRules []string
}

func (p ReminderCreateRequest) Validate() error {
	if p.CustomerID == 0 {
		return errors.New("customer_id is required")
	}
	if p.TemplateID == 0 {
		return errors.New("template_id is required")
	}
	if p.StartDate.IsZero() {
		return errors.New("start_date is required")
	}
	if !p.Frequency.Valid() {
		return fmt.Errorf("frequency must be one of: %s, %s, %s, %s, %s",
			FrequencyDaily, FrequencyThreeDays, FrequencyWeekly, FrequencyTwoWeeks, FrequencyOneTime)
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(p.StartDate) {
		return errors.New("expires_at must be after start_date")
	}
	if _, err := ParseNotificationRules(p.NotificationRules); err != nil {
		return err
	}
	return nil
}

// ReminderFilter controls List queries.
type ReminderFilter struct {
	CustomerID *int64
	Active     *bool
	Limit      int
	Offset     int
	Desc       bool
}
