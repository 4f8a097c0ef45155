package app

import (
	"time"

	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// SaveResponse is the domain response for a subscribed customer save.
// HTTP layer will translate this into JSON
type SaveResponse struct {
	Success            bool        `json:"success"`
	FailedStep         SaveStep    `json:"failedStep,omitempty"`
	Errors             FieldErrors `json:"errors,omitempty"`
	CustomerToken      string      `json:"customerToken,omitempty"`
	SubscriptionToken  string      `json:"subscriptionToken,omitempty"`
	SubscriptionStatus string      `json:"subscriptionStatus,omitempty"`
}

// RetryResponse is the domain response for a charge retry.
type RetryResponse struct {
	Success            bool        `json:"success"`
	Errors             FieldErrors `json:"errors,omitempty"`
	SubscriptionStatus string      `json:"subscriptionStatus,omitempty"`
}

// BillingSummary is the read model of a subscribed customer.
type BillingSummary struct {
	CustomerToken     string `json:"customerToken"`
	SubscriptionToken string `json:"subscriptionToken,omitempty"`

	Email           string     `json:"email,omitempty"`
	HasBillingInfo  bool       `json:"hasBillingInfo"`
	Last4           string     `json:"last4,omitempty"`
	CardholderName  string     `json:"cardholderName,omitempty"`
	ExpirationMonth string     `json:"expirationMonth,omitempty"`
	ExpirationYear  string     `json:"expirationYear,omitempty"`
	BillingAddress  gw.Address `json:"billingAddress"`

	SubscriptionStatus    string          `json:"subscriptionStatus,omitempty"`
	PastDue               bool            `json:"pastDue"`
	NextBillingDate       *time.Time      `json:"nextBillingDate,omitempty"`
	MostRecentTransaction *gw.Transaction `json:"mostRecentTransaction,omitempty"`
}
