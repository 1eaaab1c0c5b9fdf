// Package transport defines the request and response shapes of the leads
// module's HTTP surface.
package transport

import (
	"time"

	"leadhub_backend/internal/leads/importer"
	"leadhub_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// ImportLeadsRequest is the payload of every import endpoint. Rows carry the
// mapped CSV lines; the remaining fields tune the invocation.
type ImportLeadsRequest struct {
	Rows []importer.ImportRow `json:"rows" validate:"required,min=1"`
	// CreateNoteEvents overrides the configured default when present.
	CreateNoteEvents *bool `json:"createNoteEvents,omitempty"`
	// DefaultSource is applied to rows without a recognizable source.
	DefaultSource string `json:"defaultSource,omitempty" validate:"omitempty,max=50"`
	// Preset names the caller's column mapping preset, recorded for auditing.
	Preset *string `json:"preset,omitempty" validate:"omitempty,max=100"`
}

// ImportRunResponse is one ledger entry.
type ImportRunResponse struct {
	ImportID       uuid.UUID `json:"importId"`
	CreatedBy      uuid.UUID `json:"createdBy"`
	Status         string    `json:"status"`
	CreatedCount   int       `json:"createdCount"`
	DuplicateCount int       `json:"duplicateCount"`
	ErrorCount     int       `json:"errorCount"`
	Preset         *string   `json:"preset,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ImportRunsResponse lists ledger entries, newest first.
type ImportRunsResponse struct {
	Items []ImportRunResponse `json:"items"`
}

// LeadEventResponse is one timeline entry on a lead.
type LeadEventResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LeadEventsResponse lists a lead's timeline entries, oldest first.
type LeadEventsResponse struct {
	Items []LeadEventResponse `json:"items"`
}

// ToLeadEventResponse maps a persisted timeline entry onto its response shape.
func ToLeadEventResponse(event repository.LeadEvent) LeadEventResponse {
	return LeadEventResponse{
		ID:          event.ID,
		LeadID:      event.LeadID,
		Type:        event.Type,
		Description: event.Description,
		CreatedBy:   event.CreatedBy,
		CreatedAt:   event.CreatedAt,
	}
}

// ToImportRunResponse maps a persisted import run onto its response shape.
func ToImportRunResponse(run repository.ImportRun) ImportRunResponse {
	return ImportRunResponse{
		ImportID:       run.ID,
		CreatedBy:      run.CreatedBy,
		Status:         run.Status,
		CreatedCount:   run.CreatedCount,
		DuplicateCount: run.DuplicateCount,
		ErrorCount:     run.ErrorCount,
		Preset:         run.Preset,
		CreatedAt:      run.CreatedAt,
	}
}
