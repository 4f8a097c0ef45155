package app

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Attributes is the flat attribute bag submitted for a subscribed customer.
// A string attribute counts as present when it is not blank.
type Attributes struct {
	CardholderName  string `json:"cardholder_name"`
	Email           string `json:"email"`
	Number          string `json:"number"`
	CVV             string `json:"cvv"`
	ExpirationMonth string `json:"expiration_month"`
	ExpirationYear  string `json:"expiration_year"`

	StreetAddress   string `json:"street_address"`
	ExtendedAddress string `json:"extended_address"`
	Locality        string `json:"locality"`
	Region          string `json:"region"`
	PostalCode      string `json:"postal_code"`
	CountryName     string `json:"country_name"`

	PlanID string `json:"plan_id"`
	// Price is optional; an absent price leaves the plan price in place.
	Price decimal.NullDecimal `json:"price"`
}

func present(v string) bool { return strings.TrimSpace(v) != "" }

func (a Attributes) cardFields() []string {
	return []string{a.CardholderName, a.Number, a.CVV, a.ExpirationMonth, a.ExpirationYear}
}

func (a Attributes) addressFields() []string {
	return []string{a.StreetAddress, a.ExtendedAddress, a.Locality, a.Region, a.PostalCode, a.CountryName}
}

func anyPresent(values ...[]string) bool {
	for _, group := range values {
		for _, v := range group {
			if present(v) {
				return true
			}
		}
	}
	return false
}

// hasBillingInfo reports whether any card or address attribute is present.
func (a Attributes) hasBillingInfo() bool {
	return anyPresent(a.cardFields(), a.addressFields())
}

// changesCustomer reports whether any customer-identifying attribute is present.
func (a Attributes) changesCustomer() bool {
	return present(a.Email) || a.hasBillingInfo()
}

// priceString renders the price for the gateway, empty when it was not given.
func (a Attributes) priceString() string {
	if !a.Price.Valid {
		return ""
	}
	return a.Price.Decimal.String()
}

func (a Attributes) changesSubscription() bool {
	return present(a.PlanID)
}
