// Package importer implements the lead import and deduplication engine:
// field normalization, legacy status translation, duplicate resolution and
// batch orchestration over externally sourced lead rows.
package importer

import (
	"strings"
	"unicode"

	"leadhub_backend/platform/phone"
)

// AddressFields are the raw postal address subfields of an imported row.
type AddressFields struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsEmpty reports whether every subfield is blank.
func (a AddressFields) IsEmpty() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.ZipCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}

// NormalizePhone derives the phone dedup key: non-digits stripped, trailing
// ten digits kept. Empty input yields "" and must never be used as a match
// key; two rows with no phone are not "equal".
func NormalizePhone(raw string) string {
	return phone.DedupKey(raw)
}

// addressKeySeparator joins the normalized subfields. Missing subfields
// contribute an empty segment so that two addresses differing only in which
// subfields are present produce different keys.
const addressKeySeparator = "|"

// NormalizeAddress derives the address dedup key: each subfield lower-cased,
// trimmed, punctuation removed and internal whitespace collapsed, then joined
// in fixed order (street, city, state, zip, country). An address with no
// populated subfields yields "" (no key).
func NormalizeAddress(raw *AddressFields) string {
	if raw == nil || raw.IsEmpty() {
		return ""
	}

	segments := []string{
		normalizeAddressSegment(raw.Street),
		normalizeAddressSegment(raw.City),
		normalizeAddressSegment(raw.State),
		normalizeAddressSegment(raw.ZipCode),
		normalizeAddressSegment(raw.Country),
	}

	return strings.Join(segments, addressKeySeparator)
}

func normalizeAddressSegment(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	var cleaned strings.Builder
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cleaned.WriteRune(r)
		case unicode.IsSpace(r):
			cleaned.WriteRune(' ')
		}
		// Punctuation is dropped entirely.
	}

	return strings.Join(strings.Fields(cleaned.String()), " ")
}
