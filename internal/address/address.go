package address

import (
	"context"
	"strings"
)

// DefaultCountry is applied when an address arrives without a country.
const DefaultCountry = "IN"

// Validator defines the interface for shipping address validation.
// Implementations may call out to an external verification API; the
// BasicValidator only checks structure and format.
type Validator interface {
	// Validate checks whether an address can be shipped to.
	// Returns the normalized address alongside any field errors. A non-nil
	// error means validation itself could not run.
	Validate(ctx context.Context, addr Address) (*ValidationResult, error)
}

// Address is a postal address. Orders embed a copy of it as their
// shipping snapshot, so the JSON field names are part of the stored format.
type Address struct {
	Label         string `json:"label,omitempty" validate:"max=100"`
	RecipientName string `json:"recipient_name" validate:"required,max=255"`
	Line1         string `json:"line1" validate:"required,max=255"`
	Line2         string `json:"line2,omitempty" validate:"max=255"`
	City          string `json:"city" validate:"required,max=120"`
	State         string `json:"state,omitempty" validate:"max=120"`
	PostalCode    string `json:"postal_code" validate:"required,postal_code"`
	Country       string `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// Normalize trims whitespace, upper-cases the country code and fills in the
// default country.
func (a Address) Normalize() Address {
	n := Address{
		Label:         strings.TrimSpace(a.Label),
		RecipientName: strings.TrimSpace(a.RecipientName),
		Line1:         strings.TrimSpace(a.Line1),
		Line2:         strings.TrimSpace(a.Line2),
		City:          strings.TrimSpace(a.City),
		State:         strings.TrimSpace(a.State),
		PostalCode:    strings.ToUpper(strings.TrimSpace(a.PostalCode)),
		Country:       strings.ToUpper(strings.TrimSpace(a.Country)),
		Phone:         strings.TrimSpace(a.Phone),
	}
	if n.Country == "" {
		n.Country = DefaultCountry
	}
	return n
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid           bool
	NormalizedAddress *Address
	Errors            []ValidationError
}

// Fields flattens the errors into a field → message map.
func (r *ValidationResult) Fields() map[string]string {
	fields := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		fields[e.Field] = e.Message
	}
	return fields
}

// ValidationError represents a specific validation error.
type ValidationError struct {
	Field   string
	Message string
}
