package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RawLeadFields is the loosely-typed field bag of one externally sourced lead
// row, e.g. a mapped CSV line. Status is deliberately untyped: upstream
// exports deliver numbers, short codes and free text interchangeably.
type RawLeadFields struct {
	FirstName      string                 `json:"firstName,omitempty"`
	LastName       string                 `json:"lastName,omitempty"`
	Email          string                 `json:"email,omitempty"`
	Phone          string                 `json:"phone,omitempty"`
	Company        string                 `json:"company,omitempty"`
	JobTitle       string                 `json:"jobTitle,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	Address        *AddressFields         `json:"address,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Score          *int                   `json:"score,omitempty"`
	EstimatedValue *float64               `json:"estimatedValue,omitempty"`
	AssignedTo     *uuid.UUID             `json:"assignedTo,omitempty"`
	Status         interface{}            `json:"status,omitempty"`
	Source         string                 `json:"source,omitempty"`
	Priority       string                 `json:"priority,omitempty"`
	CustomFields   map[string]interface{} `json:"customFields,omitempty"`
}

// ImportRow pairs raw fields with the caller-supplied 1-based source row
// number. The row number is used solely for error and result attribution;
// the engine does not validate its uniqueness or ordering.
type ImportRow struct {
	RowNumber int           `json:"rowNumber"`
	Data      RawLeadFields `json:"data"`
}

// ExternalDealID extracts the upstream deal identifier from the row's custom
// fields. Two locations are honored for backward compatibility:
// customFields.external.dealid and customFields.dealId.
func (f RawLeadFields) ExternalDealID() string {
	if f.CustomFields == nil {
		return ""
	}

	if external, ok := f.CustomFields["external"].(map[string]interface{}); ok {
		if id := stringifyID(external["dealid"]); id != "" {
			return id
		}
	}

	return stringifyID(f.CustomFields["dealId"])
}

// HasIdentitySignal reports whether the row carries at least one of the
// identity fields usable for deduplication: external deal id, phone or email.
// Rows without any such signal are rejected outright because they could never
// be deduplicated later.
func (f RawLeadFields) HasIdentitySignal() bool {
	return f.ExternalDealID() != "" ||
		strings.TrimSpace(f.Phone) != "" ||
		strings.TrimSpace(f.Email) != ""
}

func stringifyID(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
