package importer

import (
	"context"

	"leadhub_backend/internal/leads/repository"
	"leadhub_backend/platform/logger"
)

// LedgerStore is the persistence capability for import-run audit records.
type LedgerStore interface {
	CreateImportRun(ctx context.Context, params repository.CreateImportRunParams) (repository.ImportRun, error)
	ListImportRuns(ctx context.Context, limit int) ([]repository.ImportRun, error)
}

// Ledger records one append-only audit row per import invocation. Recording
// is best-effort auditing: callers swallow failures and never retry.
type Ledger struct {
	store LedgerStore
	log   *logger.Logger
}

// NewLedger creates an import-run ledger over the given store.
func NewLedger(store LedgerStore, log *logger.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// Record persists one ImportRun entry. The returned error is informational;
// the import outcome must not depend on it.
func (l *Ledger) Record(ctx context.Context, params repository.CreateImportRunParams) error {
	if _, err := l.store.CreateImportRun(ctx, params); err != nil {
		if l.log != nil {
			l.log.DatabaseError("create import run", err)
		}
		return err
	}
	return nil
}

// Runs lists the most recent import runs for operational history.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]repository.ImportRun, error) {
	return l.store.ListImportRuns(ctx, limit)
}
