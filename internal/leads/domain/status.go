// Package domain holds the lead bounded context's core value types.
package domain

import "strings"

// LeadStatus is the canonical pipeline status of a lead. Imported rows carry
// heterogeneous legacy representations that are translated into exactly one
// of these values before persistence.
type LeadStatus string

const (
	StatusNew              LeadStatus = "NEW"
	StatusContacted        LeadStatus = "CONTACTED"
	StatusQualified        LeadStatus = "QUALIFIED"
	StatusConverted        LeadStatus = "CONVERTED"
	StatusLost             LeadStatus = "LOST"
	StatusCallBack         LeadStatus = "CALL_BACK"
	StatusOfferMade        LeadStatus = "OFFER_MADE"
	StatusNegotiatingOffer LeadStatus = "NEGOTIATING_OFFER"
	StatusContractOut      LeadStatus = "CONTRACT_OUT"
	StatusTransaction      LeadStatus = "TRANSACTION"
	StatusApptSet          LeadStatus = "APPT_SET"
	StatusOfferSent        LeadStatus = "OFFER_SENT"
	StatusUnderContract    LeadStatus = "UNDER_CONTRACT"
	StatusDead             LeadStatus = "DEAD"
	StatusNurture          LeadStatus = "NURTURE"
	StatusFollowUp         LeadStatus = "FOLLOW_UP"
)

var knownStatuses = map[LeadStatus]struct{}{
	StatusNew:              {},
	StatusContacted:        {},
	StatusQualified:        {},
	StatusConverted:        {},
	StatusLost:             {},
	StatusCallBack:         {},
	StatusOfferMade:        {},
	StatusNegotiatingOffer: {},
	StatusContractOut:      {},
	StatusTransaction:      {},
	StatusApptSet:          {},
	StatusOfferSent:        {},
	StatusUnderContract:    {},
	StatusDead:             {},
	StatusNurture:          {},
	StatusFollowUp:         {},
}

// IsKnownStatus reports whether status is one of the canonical values.
func IsKnownStatus(status LeadStatus) bool {
	_, ok := knownStatuses[status]
	return ok
}

// ParseStatus matches raw against the canonical enum, case-insensitively and
// with spaces normalized to underscores. The boolean reports a match.
func ParseStatus(raw string) (LeadStatus, bool) {
	candidate := LeadStatus(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "_"))
	if IsKnownStatus(candidate) {
		return candidate, true
	}
	return "", false
}
