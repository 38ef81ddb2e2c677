// Package phone normalizes customer phone numbers to E.164 before SMS
// dispatch. Numbers without a leading + are parsed against a default region.
package phone

import (
	"errors"
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidNumber = errors.New("invalid phone number")

// Normalize parses raw as a phone number and returns its E.164 form.
// defaultRegion (an ISO 3166-1 alpha-2 code such as "US") is only consulted
// when raw carries no + prefix.
func Normalize(raw, defaultRegion string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidNumber)
	}

	region := ""
	if raw[0] != '+' {
		region = defaultRegion
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
