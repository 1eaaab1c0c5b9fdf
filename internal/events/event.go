// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadhub_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is persisted by the import engine.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedBy uuid.UUID `json:"createdBy"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadNoteAdded is published when an imported row carries free-text notes and
// the import was asked to surface them as timeline notes.
type LeadNoteAdded struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	AuthorID uuid.UUID `json:"authorId"`
	Note     string    `json:"note"`
}

func (e LeadNoteAdded) EventName() string { return "leads.note.added" }

// LeadsImported is published once per import invocation with the aggregate
// outcome.
type LeadsImported struct {
	BaseEvent
	ImportID       *uuid.UUID `json:"importId,omitempty"`
	Mode           string     `json:"mode"`
	CreatedBy      uuid.UUID  `json:"createdBy"`
	CreatedCount   int        `json:"createdCount"`
	DuplicateCount int        `json:"duplicateCount"`
	ErrorCount     int        `json:"errorCount"`
}

func (e LeadsImported) EventName() string { return "leads.imported" }
