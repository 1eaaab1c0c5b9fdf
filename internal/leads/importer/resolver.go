package importer

import (
	"context"
	"errors"
	"strings"

	"leadhub_backend/internal/leads/repository"
)

// LeadLookup is the point-lookup capability the resolver needs from the lead
// store. This is a consumer-driven interface so the engine is testable
// against an in-memory fake.
type LeadLookup interface {
	FindByExternalDealID(ctx context.Context, dealID string) (repository.Lead, error)
	FindByPhoneKey(ctx context.Context, key string) (repository.Lead, error)
	FindByAddressKey(ctx context.Context, key string) (repository.Lead, error)
	FindByEmail(ctx context.Context, email string) (repository.Lead, error)
}

// Candidate carries the normalized identity keys of one row under
// deduplication.
type Candidate struct {
	ExternalDealID string
	PhoneKey       string
	AddressKey     string
	Email          string
}

// DuplicateResolver finds an existing lead matching a candidate row.
type DuplicateResolver struct {
	store LeadLookup
}

// NewDuplicateResolver creates a resolver over the given lookup capability.
func NewDuplicateResolver(store LeadLookup) *DuplicateResolver {
	return &DuplicateResolver{store: store}
}

// FindDuplicate consults the store in fixed priority order and returns the
// first hit, or nil when the candidate matches nothing:
//
//  1. external deal identifier - the upstream system's own primary key, the
//     strongest signal
//  2. normalized phone - the most reliable human identity signal in this
//     domain
//  3. normalized address - weaker, an address can be shared by several
//     parties
//  4. exact email - last because many legacy rows lack it
func (r *DuplicateResolver) FindDuplicate(ctx context.Context, candidate Candidate) (*repository.Lead, error) {
	strategies := []struct {
		key  string
		find func(context.Context, string) (repository.Lead, error)
	}{
		{candidate.ExternalDealID, r.store.FindByExternalDealID},
		{candidate.PhoneKey, r.store.FindByPhoneKey},
		{candidate.AddressKey, r.store.FindByAddressKey},
		{strings.TrimSpace(candidate.Email), r.store.FindByEmail},
	}

	for _, strategy := range strategies {
		if strategy.key == "" {
			continue
		}

		lead, err := strategy.find(ctx, strategy.key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return &lead, nil
	}

	return nil, nil
}
