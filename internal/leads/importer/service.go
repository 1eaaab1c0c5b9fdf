package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadhub_backend/internal/events"
	"leadhub_backend/internal/leads/domain"
	"leadhub_backend/internal/leads/repository"
	"leadhub_backend/platform/apperr"
	"leadhub_backend/platform/logger"
	"leadhub_backend/platform/phone"
	"leadhub_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	// MaxImportRows is the whole-batch precondition: batches above this size
	// are rejected before any row is touched.
	MaxImportRows = 100000

	// chunkSize bounds peak memory per pass. Chunking never changes per-row
	// outcomes or their ordering; rows stay strictly sequential so a row can
	// match a lead committed earlier in the same batch.
	chunkSize = 500
)

// Mode distinguishes a preview pass from a committing pass. The values double
// as the persisted ledger status.
type Mode string

const (
	ModeDryRun Mode = "dry_run"
	ModeCommit Mode = "committed"
)

// Store is everything the batch processor needs from persistence.
type Store interface {
	LeadLookup
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	CreateLeadEvent(ctx context.Context, params repository.CreateLeadEventParams) (repository.LeadEvent, error)
	ListLeadEvents(ctx context.Context, leadID uuid.UUID) ([]repository.LeadEvent, error)
}

// Options tune one import invocation.
type Options struct {
	// CreateNoteEvents emits a note-added timeline event for rows carrying
	// free-text notes (commit mode only). Emission is best-effort.
	CreateNoteEvents bool
	// DefaultSource is used when a row has no recognizable source.
	DefaultSource string
	// Preset names the column mapping preset used by the caller, recorded in
	// the ledger for operational history.
	Preset *string
}

// RowError attributes one failed row.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

// DuplicateMatch attributes one skipped row to the lead it duplicates.
type DuplicateMatch struct {
	RowNumber   int       `json:"rowNumber"`
	DuplicateOf uuid.UUID `json:"duplicateOf"`
}

// Outcome is the aggregate result of one import invocation. It is immutable
// after return and always satisfies
// TotalRowsProcessed == CreatedCount + DuplicateCount + len(Errors).
type Outcome struct {
	TotalRowsProcessed int              `json:"totalRowsProcessed"`
	CreatedCount       int              `json:"createdCount"`
	DuplicateCount     int              `json:"duplicateCount"`
	Errors             []RowError       `json:"errors"`
	CreatedIDs         []uuid.UUID      `json:"createdIds"`
	Duplicates         []DuplicateMatch `json:"duplicates"`
	ImportID           *uuid.UUID       `json:"importId,omitempty"`
}

// PreviewRecord is the would-be lead of one dry-run row.
type PreviewRecord struct {
	RowNumber int                         `json:"rowNumber"`
	Record    repository.CreateLeadParams `json:"record"`
}

// DryRunOutcome extends Outcome with the records a commit would create.
type DryRunOutcome struct {
	Outcome
	Records []PreviewRecord `json:"records"`
}

// Service is the import batch processor. It orchestrates per-row validation,
// normalization, duplicate resolution and record construction across a
// submitted batch, isolating per-row failures.
type Service struct {
	store    Store
	ledger   *Ledger
	resolver *DuplicateResolver
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates the import engine over the given store and ledger.
func NewService(store Store, ledger *Ledger, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		ledger:   ledger,
		resolver: NewDuplicateResolver(store),
		bus:      bus,
		log:      log,
	}
}

// ImportLeads is the legacy single-pass commit entry point. It behaves like
// CommitImport but does not expose the ledger importId to the caller.
func (s *Service) ImportLeads(ctx context.Context, rows []ImportRow, createdBy uuid.UUID, opts Options) (Outcome, error) {
	outcome, _, err := s.run(ctx, rows, ModeCommit, createdBy, opts)
	if err != nil {
		return Outcome{}, err
	}
	outcome.ImportID = nil
	return outcome, nil
}

// CommitImport runs a full commit: chunked persistence, optional note-event
// emission and a ledger entry whose id is returned in the outcome.
func (s *Service) CommitImport(ctx context.Context, rows []ImportRow, createdBy uuid.UUID, opts Options) (Outcome, error) {
	outcome, _, err := s.run(ctx, rows, ModeCommit, createdBy, opts)
	return outcome, err
}

// DryRunImport performs all matching and normalization logic without
// persisting leads, returning the records a commit would create. A ledger
// entry is written only when a caller identity is supplied.
func (s *Service) DryRunImport(ctx context.Context, rows []ImportRow, createdBy *uuid.UUID) (DryRunOutcome, error) {
	runBy := uuid.Nil
	if createdBy != nil {
		runBy = *createdBy
	}

	outcome, previews, err := s.run(ctx, rows, ModeDryRun, runBy, Options{})
	if err != nil {
		return DryRunOutcome{}, err
	}
	if createdBy == nil {
		outcome.ImportID = nil
	}

	return DryRunOutcome{Outcome: outcome, Records: previews}, nil
}

// ImportRuns exposes the ledger history.
func (s *Service) ImportRuns(ctx context.Context, limit int) ([]repository.ImportRun, error) {
	return s.ledger.Runs(ctx, limit)
}

// LeadEvents returns a lead's timeline entries, oldest first. The lead must
// exist.
func (s *Service) LeadEvents(ctx context.Context, leadID uuid.UUID) ([]repository.LeadEvent, error) {
	if _, err := s.store.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}
	return s.store.ListLeadEvents(ctx, leadID)
}

// rowResult is the outcome of exactly one row: created, previewed, duplicate
// or failed. Folding these into the aggregate keeps per-row failures isolated
// without exceptions as control flow.
type rowResult struct {
	createdID   *uuid.UUID
	preview     *PreviewRecord
	duplicateOf *uuid.UUID
	errMessage  string
}

func (s *Service) run(ctx context.Context, rows []ImportRow, mode Mode, createdBy uuid.UUID, opts Options) (Outcome, []PreviewRecord, error) {
	if len(rows) > MaxImportRows {
		return Outcome{}, nil, apperr.Validation(fmt.Sprintf("import exceeds maximum of %d rows", MaxImportRows))
	}

	outcome := Outcome{
		Errors:     make([]RowError, 0),
		CreatedIDs: make([]uuid.UUID, 0),
		Duplicates: make([]DuplicateMatch, 0),
	}
	previews := make([]PreviewRecord, 0)

	// Rows are processed strictly in submission order, sequentially: a row's
	// duplicate lookup must observe leads committed by earlier rows of the
	// same invocation.
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		for _, row := range rows[start:end] {
			result := s.processRow(ctx, row, mode, createdBy, opts)
			outcome.TotalRowsProcessed++

			switch {
			case result.errMessage != "":
				outcome.Errors = append(outcome.Errors, RowError{RowNumber: row.RowNumber, Message: result.errMessage})
			case result.duplicateOf != nil:
				outcome.DuplicateCount++
				outcome.Duplicates = append(outcome.Duplicates, DuplicateMatch{RowNumber: row.RowNumber, DuplicateOf: *result.duplicateOf})
			case result.createdID != nil:
				outcome.CreatedCount++
				outcome.CreatedIDs = append(outcome.CreatedIDs, *result.createdID)
			case result.preview != nil:
				outcome.CreatedCount++
				previews = append(previews, *result.preview)
			}
		}
	}

	importID := s.recordRun(ctx, mode, createdBy, opts.Preset, outcome)
	outcome.ImportID = importID

	if s.bus != nil && createdBy != uuid.Nil {
		s.bus.Publish(ctx, events.LeadsImported{
			BaseEvent:      events.NewBaseEvent(),
			ImportID:       importID,
			Mode:           string(mode),
			CreatedBy:      createdBy,
			CreatedCount:   outcome.CreatedCount,
			DuplicateCount: outcome.DuplicateCount,
			ErrorCount:     len(outcome.Errors),
		})
	}

	if s.log != nil {
		s.log.ImportRun(string(mode), outcome.TotalRowsProcessed, outcome.CreatedCount, outcome.DuplicateCount, len(outcome.Errors))
	}

	return outcome, previews, nil
}

func (s *Service) processRow(ctx context.Context, row ImportRow, mode Mode, createdBy uuid.UUID, opts Options) rowResult {
	data := row.Data

	if !data.HasIdentitySignal() {
		return rowResult{errMessage: "row has no identity field (external deal id, phone or email)"}
	}

	candidate := Candidate{
		ExternalDealID: data.ExternalDealID(),
		PhoneKey:       NormalizePhone(data.Phone),
		AddressKey:     NormalizeAddress(data.Address),
		Email:          strings.TrimSpace(data.Email),
	}

	existing, err := s.resolver.FindDuplicate(ctx, candidate)
	if err != nil {
		return rowResult{errMessage: err.Error()}
	}
	if existing != nil {
		return rowResult{duplicateOf: &existing.ID}
	}

	record := s.buildRecord(data, candidate, createdBy, opts)

	if mode == ModeDryRun {
		return rowResult{preview: &PreviewRecord{RowNumber: row.RowNumber, Record: record}}
	}

	lead, err := s.store.Create(ctx, record)
	if err != nil {
		return rowResult{errMessage: err.Error()}
	}

	s.afterCreate(ctx, lead, data, createdBy, opts)

	return rowResult{createdID: &lead.ID}
}

// buildRecord assembles the persistable lead from a surviving row.
func (s *Service) buildRecord(data RawLeadFields, candidate Candidate, createdBy uuid.UUID, opts Options) repository.CreateLeadParams {
	resolution := TranslateStatus(data.Status)

	record := repository.CreateLeadParams{
		FirstName:      strings.TrimSpace(data.FirstName),
		LastName:       strings.TrimSpace(data.LastName),
		Email:          optional(candidate.Email),
		Company:        optional(strings.TrimSpace(data.Company)),
		JobTitle:       optional(strings.TrimSpace(data.JobTitle)),
		Status:         resolution.Status,
		LegacyStatus:   resolution.LegacyStatus,
		Source:         domain.NormalizeSource(data.Source, domain.LeadSource(opts.DefaultSource)),
		Priority:       domain.NormalizePriority(data.Priority),
		Notes:          optional(strings.TrimSpace(data.Notes)),
		Tags:           data.Tags,
		EstimatedValue: data.EstimatedValue,
		CustomFields:   data.CustomFields,
		AssignedTo:     data.AssignedTo,
		CreatedBy:      createdBy,
	}

	if raw := strings.TrimSpace(data.Phone); raw != "" {
		record.Phone = optional(phone.NormalizeE164(raw))
		record.PhoneKey = optional(candidate.PhoneKey)
	}

	if data.Score != nil {
		record.Score = *data.Score
	}

	if addr := data.Address; addr != nil && !addr.IsEmpty() {
		record.AddressStreet = optional(strings.TrimSpace(addr.Street))
		record.AddressCity = optional(strings.TrimSpace(addr.City))
		record.AddressState = optional(strings.TrimSpace(addr.State))
		record.AddressZipCode = optional(strings.TrimSpace(addr.ZipCode))
		record.AddressCountry = optional(strings.TrimSpace(addr.Country))
		record.AddressKey = optional(candidate.AddressKey)
	}

	return record
}

// afterCreate handles the best-effort side effects of a committed row. None
// of them may fail the import.
func (s *Service) afterCreate(ctx context.Context, lead repository.Lead, data RawLeadFields, createdBy uuid.UUID, opts Options) {
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Status:    string(lead.Status),
			Source:    string(lead.Source),
			CreatedBy: createdBy,
		})
	}

	if !opts.CreateNoteEvents {
		return
	}

	note := sanitize.Text(data.Notes)
	if note == "" {
		return
	}

	if _, err := s.store.CreateLeadEvent(ctx, repository.CreateLeadEventParams{
		LeadID:      lead.ID,
		Type:        "note_added",
		Description: note,
		CreatedBy:   createdBy,
	}); err != nil {
		if s.log != nil {
			s.log.Warn("note event emission failed", "leadId", lead.ID, "error", err)
		}
		return
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadNoteAdded{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			AuthorID:  createdBy,
			Note:      note,
		})
	}
}

// recordRun writes the ledger entry for this invocation. Ledger failures are
// swallowed; auditing is strictly best-effort. No entry is written for an
// anonymous dry run.
func (s *Service) recordRun(ctx context.Context, mode Mode, createdBy uuid.UUID, preset *string, outcome Outcome) *uuid.UUID {
	if createdBy == uuid.Nil {
		return nil
	}

	runID := uuid.New()
	if err := s.ledger.Record(ctx, repository.CreateImportRunParams{
		ID:             runID,
		CreatedBy:      createdBy,
		Status:         string(mode),
		CreatedCount:   outcome.CreatedCount,
		DuplicateCount: outcome.DuplicateCount,
		ErrorCount:     len(outcome.Errors),
		Preset:         preset,
	}); err != nil {
		return nil
	}

	return &runID
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
