package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportRun is one audit record per import invocation. Rows are append-only;
// nothing updates or deletes them outside an administrative purge.
type ImportRun struct {
	ID             uuid.UUID
	CreatedBy      uuid.UUID
	Status         string
	CreatedCount   int
	DuplicateCount int
	ErrorCount     int
	Preset         *string
	CreatedAt      time.Time
}

type CreateImportRunParams struct {
	ID             uuid.UUID
	CreatedBy      uuid.UUID
	Status         string
	CreatedCount   int
	DuplicateCount int
	ErrorCount     int
	Preset         *string
}

func (r *Repository) CreateImportRun(ctx context.Context, params CreateImportRunParams) (ImportRun, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO import_runs (id, created_by, status, created_count, duplicate_count, error_count, preset)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_by, status, created_count, duplicate_count, error_count, preset, created_at
	`,
		params.ID, params.CreatedBy, params.Status, params.CreatedCount, params.DuplicateCount, params.ErrorCount, params.Preset,
	)

	var run ImportRun
	err := row.Scan(&run.ID, &run.CreatedBy, &run.Status, &run.CreatedCount, &run.DuplicateCount, &run.ErrorCount, &run.Preset, &run.CreatedAt)
	if err != nil {
		return ImportRun{}, err
	}
	return run, nil
}

// ListImportRuns returns the most recent import runs, newest first.
func (r *Repository) ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, created_by, status, created_count, duplicate_count, error_count, preset, created_at
		FROM import_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]ImportRun, 0)
	for rows.Next() {
		var run ImportRun
		if err := rows.Scan(&run.ID, &run.CreatedBy, &run.Status, &run.CreatedCount, &run.DuplicateCount, &run.ErrorCount, &run.Preset, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return runs, nil
}
