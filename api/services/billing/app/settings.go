package app

import "github.com/tbeaudouin05/stripe-billing/api/services/billing/timezone"

// Settings is the merchant configuration shared by subscriptions.
type Settings struct {
	// MerchantAccountID is injected into subscription payloads when set.
	MerchantAccountID string
	// TimeZone names the zone billing dates are reported in.
	TimeZone string
}

// DefaultSettings returns settings with the default merchant zone and no merchant account.
func DefaultSettings() Settings {
	return Settings{TimeZone: timezone.DefaultZoneName}
}
