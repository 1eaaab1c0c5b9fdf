package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadEvent is a timeline entry on a lead (e.g. an imported note).
type LeadEvent struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Type        string
	Description string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

type CreateLeadEventParams struct {
	LeadID      uuid.UUID
	Type        string
	Description string
	CreatedBy   uuid.UUID
}

func (r *Repository) CreateLeadEvent(ctx context.Context, params CreateLeadEventParams) (LeadEvent, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_events (lead_id, type, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, type, description, created_by, created_at
	`, params.LeadID, params.Type, params.Description, params.CreatedBy)

	var event LeadEvent
	err := row.Scan(&event.ID, &event.LeadID, &event.Type, &event.Description, &event.CreatedBy, &event.CreatedAt)
	if err != nil {
		return LeadEvent{}, err
	}
	return event, nil
}

// ListLeadEvents returns a lead's timeline entries, oldest first.
func (r *Repository) ListLeadEvents(ctx context.Context, leadID uuid.UUID) ([]LeadEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, type, description, created_by, created_at
		FROM lead_events
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]LeadEvent, 0)
	for rows.Next() {
		var event LeadEvent
		if err := rows.Scan(&event.ID, &event.LeadID, &event.Type, &event.Description, &event.CreatedBy, &event.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, event)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
