package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leadhub_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the persisted lead entity.
type Lead struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	PhoneKey       *string
	Company        *string
	JobTitle       *string
	AddressStreet  *string
	AddressCity    *string
	AddressState   *string
	AddressZipCode *string
	AddressCountry *string
	AddressKey     *string
	Status         domain.LeadStatus
	LegacyStatus   *string
	Source         domain.LeadSource
	Priority       domain.LeadPriority
	Score          int
	EstimatedValue *float64
	Notes          *string
	Tags           []string
	CustomFields   map[string]interface{}
	AssignedTo     *uuid.UUID
	CreatedBy      uuid.UUID
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateLeadParams struct {
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	PhoneKey       *string
	Company        *string
	JobTitle       *string
	AddressStreet  *string
	AddressCity    *string
	AddressState   *string
	AddressZipCode *string
	AddressCountry *string
	AddressKey     *string
	Status         domain.LeadStatus
	LegacyStatus   *string
	Source         domain.LeadSource
	Priority       domain.LeadPriority
	Score          int
	EstimatedValue *float64
	Notes          *string
	Tags           []string
	CustomFields   map[string]interface{}
	AssignedTo     *uuid.UUID
	CreatedBy      uuid.UUID
}

const leadColumns = `
	id, first_name, last_name, email, phone, phone_normalized, company, job_title,
	address_street, address_city, address_state, address_zip_code, address_country, address_normalized,
	status, legacy_status, source, priority, score, estimated_value, notes, tags, custom_fields,
	assigned_to, created_by, is_active, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	customFields, err := marshalCustomFields(params.CustomFields)
	if err != nil {
		return Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, email, phone, phone_normalized, company, job_title,
			address_street, address_city, address_state, address_zip_code, address_country, address_normalized,
			status, legacy_status, source, priority, score, estimated_value, notes, tags, custom_fields,
			assigned_to, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING`+leadColumns,
		params.FirstName, params.LastName, params.Email, params.Phone, params.PhoneKey, params.Company, params.JobTitle,
		params.AddressStreet, params.AddressCity, params.AddressState, params.AddressZipCode, params.AddressCountry, params.AddressKey,
		params.Status, params.LegacyStatus, params.Source, params.Priority, params.Score, params.EstimatedValue, params.Notes, params.Tags, customFields,
		params.AssignedTo, params.CreatedBy,
	)

	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// FindByExternalDealID looks up a lead by the upstream system's deal
// identifier. The identifier has lived at two customFields locations across
// import generations, so both are checked.
func (r *Repository) FindByExternalDealID(ctx context.Context, dealID string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadColumns+`
		FROM leads
		WHERE custom_fields #>> '{external,dealid}' = $1
		   OR custom_fields ->> 'dealId' = $1
		LIMIT 1
	`, dealID)
	return scanLead(row)
}

// FindByPhoneKey looks up a lead by its normalized phone dedup key.
func (r *Repository) FindByPhoneKey(ctx context.Context, key string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadColumns+` FROM leads WHERE phone_normalized = $1 LIMIT 1
	`, key)
	return scanLead(row)
}

// FindByAddressKey looks up a lead by its normalized address dedup key.
func (r *Repository) FindByAddressKey(ctx context.Context, key string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadColumns+` FROM leads WHERE address_normalized = $1 LIMIT 1
	`, key)
	return scanLead(row)
}

// FindByEmail looks up a lead by exact email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadColumns+` FROM leads WHERE email = $1 LIMIT 1
	`, email)
	return scanLead(row)
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var customFields []byte
	err := row.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone, &lead.PhoneKey, &lead.Company, &lead.JobTitle,
		&lead.AddressStreet, &lead.AddressCity, &lead.AddressState, &lead.AddressZipCode, &lead.AddressCountry, &lead.AddressKey,
		&lead.Status, &lead.LegacyStatus, &lead.Source, &lead.Priority, &lead.Score, &lead.EstimatedValue, &lead.Notes, &lead.Tags, &customFields,
		&lead.AssignedTo, &lead.CreatedBy, &lead.IsActive, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}

	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &lead.CustomFields); err != nil {
			return Lead{}, err
		}
	}

	return lead, nil
}

func marshalCustomFields(fields map[string]interface{}) ([]byte, error) {
	if len(fields) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(fields)
}
