package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"leadhub_backend/internal/leads/domain"
	"leadhub_backend/internal/leads/repository"
	"leadhub_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeStore is an in-memory lead store covering both the import Store and the
// LedgerStore capabilities.
type fakeStore struct {
	leads      []repository.Lead
	leadEvents []repository.LeadEvent
	runs       []repository.ImportRun

	createErr    error
	leadEventErr error
	runErr       error
}

func (f *fakeStore) findLead(match func(repository.Lead) bool) (repository.Lead, error) {
	for _, lead := range f.leads {
		if match(lead) {
			return lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeStore) FindByExternalDealID(_ context.Context, dealID string) (repository.Lead, error) {
	return f.findLead(func(lead repository.Lead) bool {
		if external, ok := lead.CustomFields["external"].(map[string]interface{}); ok {
			if id, ok := external["dealid"].(string); ok && id == dealID {
				return true
			}
		}
		id, ok := lead.CustomFields["dealId"].(string)
		return ok && id == dealID
	})
}

func (f *fakeStore) FindByPhoneKey(_ context.Context, key string) (repository.Lead, error) {
	return f.findLead(func(lead repository.Lead) bool {
		return lead.PhoneKey != nil && *lead.PhoneKey == key
	})
}

func (f *fakeStore) FindByAddressKey(_ context.Context, key string) (repository.Lead, error) {
	return f.findLead(func(lead repository.Lead) bool {
		return lead.AddressKey != nil && *lead.AddressKey == key
	})
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (repository.Lead, error) {
	return f.findLead(func(lead repository.Lead) bool {
		return lead.Email != nil && *lead.Email == email
	})
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	return f.findLead(func(lead repository.Lead) bool {
		return lead.ID == id
	})
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	if f.createErr != nil {
		return repository.Lead{}, f.createErr
	}

	lead := repository.Lead{
		ID:           uuid.New(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Phone:        params.Phone,
		PhoneKey:     params.PhoneKey,
		AddressKey:   params.AddressKey,
		Status:       params.Status,
		LegacyStatus: params.LegacyStatus,
		Source:       params.Source,
		Priority:     params.Priority,
		Score:        params.Score,
		Notes:        params.Notes,
		CustomFields: params.CustomFields,
		CreatedBy:    params.CreatedBy,
		IsActive:     true,
	}
	f.leads = append(f.leads, lead)
	return lead, nil
}

func (f *fakeStore) CreateLeadEvent(_ context.Context, params repository.CreateLeadEventParams) (repository.LeadEvent, error) {
	if f.leadEventErr != nil {
		return repository.LeadEvent{}, f.leadEventErr
	}

	event := repository.LeadEvent{
		ID:          uuid.New(),
		LeadID:      params.LeadID,
		Type:        params.Type,
		Description: params.Description,
		CreatedBy:   params.CreatedBy,
	}
	f.leadEvents = append(f.leadEvents, event)
	return event, nil
}

func (f *fakeStore) ListLeadEvents(_ context.Context, leadID uuid.UUID) ([]repository.LeadEvent, error) {
	items := make([]repository.LeadEvent, 0)
	for _, event := range f.leadEvents {
		if event.LeadID == leadID {
			items = append(items, event)
		}
	}
	return items, nil
}

func (f *fakeStore) CreateImportRun(_ context.Context, params repository.CreateImportRunParams) (repository.ImportRun, error) {
	if f.runErr != nil {
		return repository.ImportRun{}, f.runErr
	}

	run := repository.ImportRun{
		ID:             params.ID,
		CreatedBy:      params.CreatedBy,
		Status:         params.Status,
		CreatedCount:   params.CreatedCount,
		DuplicateCount: params.DuplicateCount,
		ErrorCount:     params.ErrorCount,
		Preset:         params.Preset,
	}
	f.runs = append(f.runs, run)
	return run, nil
}

func (f *fakeStore) ListImportRuns(_ context.Context, limit int) ([]repository.ImportRun, error) {
	if limit <= 0 || limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, NewLedger(store, nil), nil, nil)
}

func phoneRow(rowNumber int, phone string) ImportRow {
	return ImportRow{
		RowNumber: rowNumber,
		Data: RawLeadFields{
			FirstName: "Row",
			LastName:  fmt.Sprintf("N%d", rowNumber),
			Phone:     phone,
		},
	}
}

func assertOutcomeInvariant(t *testing.T, outcome Outcome) {
	t.Helper()
	if outcome.TotalRowsProcessed != outcome.CreatedCount+outcome.DuplicateCount+len(outcome.Errors) {
		t.Fatalf("outcome invariant violated: total=%d created=%d duplicates=%d errors=%d",
			outcome.TotalRowsProcessed, outcome.CreatedCount, outcome.DuplicateCount, len(outcome.Errors))
	}
}

func TestCommitImportCreatesLeadsAndLedgerEntry(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	createdBy := uuid.New()

	rows := []ImportRow{
		phoneRow(1, "(555) 111-2222"),
		phoneRow(2, "(555) 333-4444"),
	}

	outcome, err := svc.CommitImport(context.Background(), rows, createdBy, Options{DefaultSource: "other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome)

	if outcome.CreatedCount != 2 || len(store.leads) != 2 {
		t.Fatalf("expected 2 created leads, got outcome=%d store=%d", outcome.CreatedCount, len(store.leads))
	}
	if outcome.ImportID == nil {
		t.Fatal("expected a ledger import id on commit")
	}
	if len(store.runs) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(store.runs))
	}
	run := store.runs[0]
	if run.Status != string(ModeCommit) || run.CreatedCount != 2 || run.CreatedBy != createdBy {
		t.Fatalf("unexpected ledger entry: %+v", run)
	}
}

func TestImportLeadsHidesLedgerImportID(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	outcome, err := svc.ImportLeads(context.Background(), []ImportRow{phoneRow(1, "5551112222")}, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ImportID != nil {
		t.Fatal("expected the legacy entry point to omit the import id")
	}
	if len(store.runs) != 1 {
		t.Fatalf("expected the ledger entry to still be written, got %d", len(store.runs))
	}
}

func TestCommitImportRowWithoutIdentityFails(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{
		{RowNumber: 7, Data: RawLeadFields{FirstName: "No", LastName: "Identity"}},
		phoneRow(8, "5551112222"),
	}

	outcome, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome)

	if outcome.CreatedCount != 1 {
		t.Fatalf("expected the valid row to survive, got %d created", outcome.CreatedCount)
	}
	if len(outcome.Errors) != 1 || outcome.Errors[0].RowNumber != 7 {
		t.Fatalf("expected row 7 to fail, got %+v", outcome.Errors)
	}
}

func TestCommitImportDetectsIntraBatchDuplicates(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{
		phoneRow(1, "(555) 111-2222"),
		phoneRow(2, "555.111.2222"),
	}

	outcome, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome)

	if outcome.CreatedCount != 1 || outcome.DuplicateCount != 1 {
		t.Fatalf("expected 1 created + 1 duplicate, got %d/%d", outcome.CreatedCount, outcome.DuplicateCount)
	}
	if len(outcome.Duplicates) != 1 || outcome.Duplicates[0].RowNumber != 2 {
		t.Fatalf("expected row 2 to be the duplicate, got %+v", outcome.Duplicates)
	}
	if outcome.Duplicates[0].DuplicateOf != store.leads[0].ID {
		t.Fatal("expected the duplicate to reference the lead created by row 1")
	}
}

func TestCommitImportIsIdempotentAcrossInvocations(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	createdBy := uuid.New()

	rows := []ImportRow{
		phoneRow(1, "5551112222"),
		phoneRow(2, "5553334444"),
	}

	if _, err := svc.CommitImport(context.Background(), rows, createdBy, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.CommitImport(context.Background(), rows, createdBy, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, second)

	if second.CreatedCount != 0 || second.DuplicateCount != 2 {
		t.Fatalf("expected a full duplicate batch on re-import, got %d/%d", second.CreatedCount, second.DuplicateCount)
	}
	if len(store.leads) != 2 {
		t.Fatalf("expected no new leads on re-import, got %d", len(store.leads))
	}
}

func TestCommitImportMatchesByExternalDealID(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	createdBy := uuid.New()

	first := []ImportRow{{
		RowNumber: 1,
		Data: RawLeadFields{
			FirstName:    "Dana",
			LastName:     "Reyes",
			Phone:        "5551112222",
			CustomFields: map[string]interface{}{"external": map[string]interface{}{"dealid": "D-42"}},
		},
	}}
	if _, err := svc.CommitImport(context.Background(), first, createdBy, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same deal id, completely different contact details.
	second := []ImportRow{{
		RowNumber: 1,
		Data: RawLeadFields{
			FirstName:    "Dana",
			LastName:     "Reyes-Smith",
			Phone:        "5559998888",
			CustomFields: map[string]interface{}{"dealId": "D-42"},
		},
	}}

	outcome, err := svc.CommitImport(context.Background(), second, createdBy, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.DuplicateCount != 1 || len(store.leads) != 1 {
		t.Fatalf("expected a deal id duplicate, got %+v", outcome)
	}
}

func TestDryRunImportPersistsNothing(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	createdBy := uuid.New()

	// Seed an existing lead so row 2 resolves as a duplicate.
	if _, err := svc.CommitImport(context.Background(), []ImportRow{phoneRow(0, "5559998888")}, createdBy, Options{}); err != nil {
		t.Fatalf("setup commit failed: %v", err)
	}
	store.runs = nil

	rows := []ImportRow{
		phoneRow(1, "5551112222"),
		phoneRow(2, "5559998888"),
		{RowNumber: 3, Data: RawLeadFields{FirstName: "No", LastName: "Identity"}},
	}

	outcome, err := svc.DryRunImport(context.Background(), rows, &createdBy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome.Outcome)

	if len(store.leads) != 1 {
		t.Fatalf("expected only the seeded lead to be persisted, got %d", len(store.leads))
	}
	if outcome.CreatedCount != 1 || outcome.DuplicateCount != 1 || len(outcome.Errors) != 1 {
		t.Fatalf("unexpected dry-run counts: %+v", outcome.Outcome)
	}
	if len(outcome.Records) != 1 || outcome.Records[0].RowNumber != 1 {
		t.Fatalf("expected one preview record for row 1, got %+v", outcome.Records)
	}
	if len(store.runs) != 1 || store.runs[0].Status != string(ModeDryRun) {
		t.Fatalf("expected a dry_run ledger entry, got %+v", store.runs)
	}
}

func TestDryRunImportMatchesAgainstPersistedLeadsOnly(t *testing.T) {
	// Nothing is written during a dry run, so two equivalent rows in the same
	// preview both count as would-be creations. Only a commit surfaces the
	// second row as a duplicate.
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{
		phoneRow(1, "(555) 111-2222"),
		phoneRow(2, "+1 555 111 2222"),
	}

	outcome, err := svc.DryRunImport(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome.Outcome)
	if outcome.CreatedCount != 2 || outcome.DuplicateCount != 0 {
		t.Fatalf("expected both rows previewed, got %+v", outcome.Outcome)
	}
	if len(store.leads) != 0 {
		t.Fatalf("expected no persisted leads, got %d", len(store.leads))
	}
}

func TestDryRunImportAnonymousSkipsLedger(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	outcome, err := svc.DryRunImport(context.Background(), []ImportRow{phoneRow(1, "5551112222")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ImportID != nil {
		t.Fatal("expected no import id for an anonymous dry run")
	}
	if len(store.runs) != 0 {
		t.Fatalf("expected no ledger entry, got %d", len(store.runs))
	}
}

func TestImportRejectsOversizedBatchBeforeProcessing(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := make([]ImportRow, MaxImportRows+1)
	for i := range rows {
		rows[i] = phoneRow(i+1, "5551112222")
	}

	_, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{})
	if err == nil {
		t.Fatal("expected an error for an oversized batch")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if len(store.leads) != 0 || len(store.runs) != 0 {
		t.Fatal("expected no side effects from a rejected batch")
	}
}

func TestCommitImportLedgerFailureDoesNotFailImport(t *testing.T) {
	store := &fakeStore{runErr: errors.New("import_runs unavailable")}
	svc := newTestService(store)

	outcome, err := svc.CommitImport(context.Background(), []ImportRow{phoneRow(1, "5551112222")}, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("expected the import to succeed despite ledger failure, got %v", err)
	}
	if outcome.CreatedCount != 1 {
		t.Fatalf("expected the lead to be created, got %+v", outcome)
	}
	if outcome.ImportID != nil {
		t.Fatal("expected no import id when the ledger write failed")
	}
}

func TestCommitImportRowFailureIsIsolated(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{
		phoneRow(1, "5551112222"),
		phoneRow(2, "5553334444"),
	}

	// Fail persistence for the second row only.
	outcome1, err := svc.CommitImport(context.Background(), rows[:1], uuid.New(), Options{})
	if err != nil || outcome1.CreatedCount != 1 {
		t.Fatalf("setup commit failed: %v %+v", err, outcome1)
	}

	store.createErr = errors.New("insert failed")
	outcome2, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome2)

	// Row 1 is now a duplicate of the setup lead; row 2 hits the insert error.
	if outcome2.DuplicateCount != 1 || len(outcome2.Errors) != 1 {
		t.Fatalf("expected 1 duplicate + 1 error, got %+v", outcome2)
	}
	if outcome2.Errors[0].Message != "insert failed" {
		t.Fatalf("expected the store error message verbatim, got %q", outcome2.Errors[0].Message)
	}
}

func TestCommitImportBuildsRecordFromRawFields(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{{
		RowNumber: 1,
		Data: RawLeadFields{
			FirstName: "  Dana ",
			LastName:  " Reyes ",
			Email:     "dana@example.com",
			Phone:     "(555) 111-2222",
			Status:    "2a",
			Notes:     "<b>Call</b> after 5pm",
		},
	}}

	outcome, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{CreateNoteEvents: true, DefaultSource: "other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.CreatedCount != 1 {
		t.Fatalf("expected 1 created lead, got %+v", outcome)
	}

	lead := store.leads[0]
	if lead.FirstName != "Dana" || lead.LastName != "Reyes" {
		t.Fatalf("expected trimmed names, got %q %q", lead.FirstName, lead.LastName)
	}
	if lead.Status != domain.StatusOfferMade {
		t.Fatalf("expected legacy code translation, got %s", lead.Status)
	}
	if lead.LegacyStatus == nil || *lead.LegacyStatus != "2a" {
		t.Fatal("expected the legacy code to be retained")
	}
	if lead.Source != domain.SourceOther {
		t.Fatalf("expected the default source, got %s", lead.Source)
	}
	if lead.Priority != domain.PriorityMedium {
		t.Fatalf("expected medium priority, got %s", lead.Priority)
	}
	if lead.PhoneKey == nil || *lead.PhoneKey != "5551112222" {
		t.Fatalf("expected the phone dedup key to be stored, got %v", lead.PhoneKey)
	}

	if len(store.leadEvents) != 1 {
		t.Fatalf("expected a note event, got %d", len(store.leadEvents))
	}
	event := store.leadEvents[0]
	if event.Type != "note_added" || event.Description != "Call after 5pm" {
		t.Fatalf("expected a sanitized note event, got %+v", event)
	}
}

func TestCommitImportNoteEventFailureDoesNotFailRow(t *testing.T) {
	store := &fakeStore{leadEventErr: errors.New("lead_events unavailable")}
	svc := newTestService(store)

	rows := []ImportRow{{
		RowNumber: 1,
		Data:      RawLeadFields{Phone: "5551112222", Notes: "call back tomorrow"},
	}}

	outcome, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{CreateNoteEvents: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutcomeInvariant(t, outcome)

	if outcome.CreatedCount != 1 || len(outcome.Errors) != 0 {
		t.Fatalf("expected the row to count as created despite the note failure, got %+v", outcome)
	}
	if len(store.leads) != 1 {
		t.Fatalf("expected the lead to be persisted, got %d", len(store.leads))
	}
	if len(store.leadEvents) != 0 {
		t.Fatalf("expected no note events, got %d", len(store.leadEvents))
	}
}

func TestCommitImportNormalizesRowPriority(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{
		{RowNumber: 1, Data: RawLeadFields{Phone: "5551112222", Priority: "URGENT"}},
		{RowNumber: 2, Data: RawLeadFields{Phone: "5553334444", Priority: "whenever"}},
		{RowNumber: 3, Data: RawLeadFields{Phone: "5555556666"}},
	}

	outcome, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.CreatedCount != 3 {
		t.Fatalf("expected 3 created leads, got %+v", outcome)
	}

	if store.leads[0].Priority != domain.PriorityUrgent {
		t.Fatalf("expected urgent priority, got %s", store.leads[0].Priority)
	}
	if store.leads[1].Priority != domain.PriorityMedium {
		t.Fatalf("expected unrecognized priority to default to medium, got %s", store.leads[1].Priority)
	}
	if store.leads[2].Priority != domain.PriorityMedium {
		t.Fatalf("expected missing priority to default to medium, got %s", store.leads[2].Priority)
	}
}

func TestLeadEventsReturnsTimelineForExistingLead(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	createdBy := uuid.New()

	rows := []ImportRow{{
		RowNumber: 1,
		Data:      RawLeadFields{Phone: "5551112222", Notes: "left voicemail"},
	}}
	if _, err := svc.CommitImport(context.Background(), rows, createdBy, Options{CreateNoteEvents: true}); err != nil {
		t.Fatalf("setup commit failed: %v", err)
	}

	events, err := svc.LeadEvents(context.Background(), store.leads[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 timeline entry, got %d", len(events))
	}
	if events[0].Type != "note_added" || events[0].Description != "left voicemail" {
		t.Fatalf("unexpected timeline entry: %+v", events[0])
	}
}

func TestLeadEventsUnknownLeadIsNotFound(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.LeadEvents(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected an error for an unknown lead")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestCommitImportSkipsNoteEventsWhenDisabled(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	rows := []ImportRow{{
		RowNumber: 1,
		Data:      RawLeadFields{Phone: "5551112222", Notes: "keep internal"},
	}}

	if _, err := svc.CommitImport(context.Background(), rows, uuid.New(), Options{CreateNoteEvents: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.leadEvents) != 0 {
		t.Fatalf("expected no note events, got %d", len(store.leadEvents))
	}
}
