package importer

import (
	"fmt"
	"strconv"
	"strings"

	"leadhub_backend/internal/leads/domain"
)

// Legacy PDR deal-sheet status codes (column B of the upstream export):
//
//	0  = Leads terminated
//	0b = DNC
//	1  = Leads Cloud
//	2  = Callbacks
//	2a = Offer Made
//	3  = Negotiating Offer
//	3a = Contract Out
//	6  = Transactions
//
// These are checked before generic integer parsing because several are
// alphanumeric ("0b", "2a", "3a") and must not be misread as plain integers.
var legacyStatusCodes = map[string]domain.LeadStatus{
	"0":  domain.StatusDead,
	"0b": domain.StatusDead, // DNC -> treat as terminated/dead lead
	"1":  domain.StatusNew,
	"2":  domain.StatusCallBack,
	"2a": domain.StatusOfferMade,
	"3":  domain.StatusNegotiatingOffer,
	"3a": domain.StatusContractOut,
	"6":  domain.StatusTransaction,
}

// Backwards-compatible numeric mapping for other sources. Numeric codes are
// considered fully understood, so no legacyStatus is retained for them.
var numericStatusCodes = map[int]domain.LeadStatus{
	0: domain.StatusNew,
	1: domain.StatusNew,
	2: domain.StatusContacted,
	3: domain.StatusApptSet,
	4: domain.StatusOfferSent,
	5: domain.StatusUnderContract,
	6: domain.StatusDead,
	7: domain.StatusNurture,
	8: domain.StatusFollowUp,
}

// Lower-case string aliases, spaces normalized to underscores.
var statusAliases = map[string]domain.LeadStatus{
	"new":            domain.StatusNew,
	"contacted":      domain.StatusContacted,
	"appt_set":       domain.StatusApptSet,
	"offer_sent":     domain.StatusOfferSent,
	"under_contract": domain.StatusUnderContract,
	"dead":           domain.StatusDead,
	"nurture":        domain.StatusNurture,
	"follow_up":      domain.StatusFollowUp,
	"qualified":      domain.StatusQualified,
	"converted":      domain.StatusConverted,
	"lost":           domain.StatusLost,
}

// StatusResolution is the result of translating an incoming status value.
// LegacyStatus carries the original representation when it was a legacy code
// or could not be mapped at all.
type StatusResolution struct {
	Status       domain.LeadStatus
	LegacyStatus *string
}

// TranslateStatus maps a heterogeneous incoming status representation onto
// the canonical status model. Resolution order, first match wins:
//
//  1. absent/empty input -> NEW
//  2. legacy alphanumeric code table (original value retained)
//  3. legacy numeric code table
//  4. the canonical enum itself (case-insensitive, spaces -> underscores)
//  5. known lower-case aliases
//  6. NEW with the original trimmed string retained for later inspection
//
// Unknown statuses never fail a row.
func TranslateStatus(raw interface{}) StatusResolution {
	rawStr := strings.TrimSpace(stringifyStatus(raw))
	if rawStr == "" {
		return StatusResolution{Status: domain.StatusNew}
	}

	if status, ok := legacyStatusCodes[strings.ToLower(rawStr)]; ok {
		retained := rawStr
		return StatusResolution{Status: status, LegacyStatus: &retained}
	}

	if num, ok := statusAsInt(raw, rawStr); ok {
		if status, mapped := numericStatusCodes[num]; mapped {
			return StatusResolution{Status: status}
		}
	}

	if status, ok := domain.ParseStatus(rawStr); ok {
		return StatusResolution{Status: status}
	}

	alias := strings.ReplaceAll(strings.ToLower(rawStr), " ", "_")
	if status, ok := statusAliases[alias]; ok {
		return StatusResolution{Status: status}
	}

	retained := rawStr
	return StatusResolution{Status: domain.StatusNew, LegacyStatus: &retained}
}

func stringifyStatus(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integral values without a
		// decimal point so they hit the code tables.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func statusAsInt(raw interface{}, rawStr string) (int, bool) {
	switch v := raw.(type) {
	case float64:
		// Only integral values qualify; 2.5 is not the code 2.
		if v != float64(int64(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	}
	num, err := strconv.Atoi(rawStr)
	if err != nil {
		return 0, false
	}
	return num, true
}
