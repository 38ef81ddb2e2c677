package engine

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

// DaysUntil returns the signed whole-day distance from today to start:
// positive while the start date is still ahead, zero on the day itself,
// negative once it has passed. Both instants are truncated to their calendar
// date before differencing so intra-day times never shift the result.
func DaysUntil(today, start time.Time) int {
	ty, tm, td := today.Date()
	sy, sm, sd := start.Date()
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	return int(s.Sub(t) / (24 * time.Hour))
}

// ShouldNotify decides whether a due reminder sends today. An empty rule list
// means notify on every due sweep. Otherwise any single matching rule is
// enough; rule text outside the vocabulary never matches and never errors.
//
// "N days before" matches N days ahead of the start date, "N days after"
// matches N days past it, "on date" matches the start date itself.
func ShouldNotify(today, start time.Time, rules []string) bool {
	if len(rules) == 0 {
		return true
	}

	days := DaysUntil(today, start)
	for _, text := range rules {
		rule, err := model.ParseNotificationRule(text)
		if err != nil {
			continue
		}
		switch rule.Kind {
		case model.RuleOnDate:
			if days == 0 {
				return true
			}
		case model.RuleOffsetBefore:
			if days == rule.OffsetDays {
				return true
			}
		case model.RuleOffsetAfter:
			if days == -rule.OffsetDays {
				return true
			}
		}
	}
	return false
}
