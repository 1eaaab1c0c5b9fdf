package domain

import "strings"

// LeadSource identifies where a lead originated.
type LeadSource string

const (
	SourceWebsite       LeadSource = "website"
	SourceReferral      LeadSource = "referral"
	SourceSocialMedia   LeadSource = "social_media"
	SourceAdvertising   LeadSource = "advertising"
	SourceColdCall      LeadSource = "cold_call"
	SourceEmailCampaign LeadSource = "email_campaign"
	SourceOther         LeadSource = "other"
)

var knownSources = map[LeadSource]struct{}{
	SourceWebsite:       {},
	SourceReferral:      {},
	SourceSocialMedia:   {},
	SourceAdvertising:   {},
	SourceColdCall:      {},
	SourceEmailCampaign: {},
	SourceOther:         {},
}

// IsKnownSource reports whether source is one of the recognized values.
func IsKnownSource(source LeadSource) bool {
	_, ok := knownSources[source]
	return ok
}

// NormalizeSource maps a raw source string onto the enum, falling back to the
// provided default (or SourceOther) when unrecognized.
func NormalizeSource(raw string, fallback LeadSource) LeadSource {
	candidate := LeadSource(strings.ToLower(strings.TrimSpace(raw)))
	if IsKnownSource(candidate) {
		return candidate
	}
	if IsKnownSource(fallback) {
		return fallback
	}
	return SourceOther
}

// LeadPriority is the triage priority assigned to a lead.
type LeadPriority string

const (
	PriorityLow    LeadPriority = "low"
	PriorityMedium LeadPriority = "medium"
	PriorityHigh   LeadPriority = "high"
	PriorityUrgent LeadPriority = "urgent"
)

var knownPriorities = map[LeadPriority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
	PriorityUrgent: {},
}

// IsKnownPriority reports whether priority is one of the recognized values.
func IsKnownPriority(priority LeadPriority) bool {
	_, ok := knownPriorities[priority]
	return ok
}

// NormalizePriority maps a raw priority string onto the enum, defaulting to
// medium.
func NormalizePriority(raw string) LeadPriority {
	candidate := LeadPriority(strings.ToLower(strings.TrimSpace(raw)))
	if IsKnownPriority(candidate) {
		return candidate
	}
	return PriorityMedium
}
