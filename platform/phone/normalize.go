// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// nanpLength is the canonical digit count for a dedup key: the national
// significant number of a NANP phone number.
const nanpLength = 10

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// DedupKey derives a comparison key from a raw phone number: all non-digit
// characters are stripped and, when more than ten digits remain, only the
// trailing ten are kept so that a leading country code ("+1", "001") does not
// split otherwise identical numbers. The key is for equality matching only
// and is never displayed. Empty or digit-free input yields "" (no key).
func DedupKey(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	key := digits.String()
	if key == "" {
		return ""
	}
	if len(key) > nanpLength {
		key = key[len(key)-nanpLength:]
	}
	return key
}
