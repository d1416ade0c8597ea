package types

import "strings"

// ShippingAddress is the structured destination captured on an order.
// Stored as jsonb via GORM's json serializer.
type ShippingAddress struct {
	Street     string  `json:"street" validate:"required"`
	City       string  `json:"city" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Notes      *string `json:"notes,omitempty"`
}

// Validate reports the required subfields that are missing.
func (a ShippingAddress) Validate() []string {
	missing := []string{}
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	return missing
}
