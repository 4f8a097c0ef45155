package gateway

//go:generate mockgen -package gateway -source gateway.go -destination client_mock.go

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Client when the requested customer or
// subscription token does not exist on the gateway.
var ErrNotFound = errors.New("not found in gateway")

// Coarse verification/transaction statuses understood by the error translator.
const (
	StatusProcessorDeclined = "processor_declined"
	StatusGatewayRejected   = "gateway_rejected"
	StatusSettled           = "settled"
)

// Subscription statuses as reported to callers.
const (
	SubscriptionStatusActive   = "Active"
	SubscriptionStatusCanceled = "Canceled"
	SubscriptionStatusExpired  = "Expired"
	SubscriptionStatusPastDue  = "Past Due"
	SubscriptionStatusPending  = "Pending"
)

// Client abstracts the payment gateway operations needed by the billing entities.
// Methods return values (not pointers) to keep SDK types out of the app layer.
// Validation failures are reported through the Success flag of the result;
// the error return is reserved for not-found and transport failures.
type Client interface {
	FindCustomer(ctx context.Context, token string) (RemoteCustomer, error)
	CreateCustomer(ctx context.Context, payload CustomerPayload) (CustomerResult, error)
	UpdateCustomer(ctx context.Context, token string, payload CustomerPayload) (CustomerResult, error)
	DeleteCustomer(ctx context.Context, token string) error
	ConfirmTransparentRedirect(ctx context.Context, queryToken string) (CustomerResult, error)

	FindSubscription(ctx context.Context, token string) (RemoteSubscription, error)
	CreateSubscription(ctx context.Context, payload SubscriptionPayload) (SubscriptionResult, error)
	UpdateSubscription(ctx context.Context, token string, payload SubscriptionPayload) (SubscriptionResult, error)

	RetryCharge(ctx context.Context, subscriptionToken string) (RetryResult, error)
	SubmitForSettlement(ctx context.Context, transactionID string) (SettlementResult, error)
}

// Address is the billing address attached to a stored card.
type Address struct {
	StreetAddress   string `json:"streetAddress,omitempty"`
	ExtendedAddress string `json:"extendedAddress,omitempty"`
	Locality        string `json:"locality,omitempty"`
	Region          string `json:"region,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	CountryName     string `json:"countryName,omitempty"`
}

// CreditCard is a payment instrument stored on a remote customer.
type CreditCard struct {
	Token           string  `json:"token"`
	Last4           string  `json:"last4"`
	CardholderName  string  `json:"cardholderName,omitempty"`
	ExpirationMonth string  `json:"expirationMonth,omitempty"`
	ExpirationYear  string  `json:"expirationYear,omitempty"`
	BillingAddress  Address `json:"billingAddress"`
}

// RemoteCustomer is the gateway's view of a billing customer.
type RemoteCustomer struct {
	ID          string
	Email       string
	CreditCards []CreditCard
}

// Transaction is a single charge attempt against a subscription.
type Transaction struct {
	ID                    string    `json:"id"`
	Status                string    `json:"status"`
	Amount                string    `json:"amount,omitempty"`
	ProcessorResponseText string    `json:"processorResponseText,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

// RemoteSubscription is the gateway's view of a recurring subscription.
// NextBillingDate is the raw calendar date (YYYY-MM-DD) as the gateway reports it.
type RemoteSubscription struct {
	ID                 string
	Status             string
	PlanID             string
	Price              string
	PaymentMethodToken string
	NextBillingDate    string
	Transactions       []Transaction
}

// FieldError is a single structured validation error reported by the gateway.
type FieldError struct {
	Attribute string
	Code      string
	Message   string
}

// Verification is the coarse outcome of a card verification.
type Verification struct {
	Status                string
	ProcessorResponseText string
}

// CustomerResult is returned by customer create/update/confirm calls.
type CustomerResult struct {
	Success      bool
	Customer     RemoteCustomer
	Verification Verification
	Errors       []FieldError
}

// SubscriptionResult is returned by subscription create/update calls.
type SubscriptionResult struct {
	Success      bool
	Subscription RemoteSubscription
	Errors       []FieldError
}

// RetryResult carries the transaction created by a charge retry.
type RetryResult struct {
	Transaction Transaction
}

// SettlementResult is returned when a transaction is submitted for settlement.
type SettlementResult struct {
	Success bool
	Errors  []FieldError
}

// AddressPayload is the billing address part of a card payload.
type AddressPayload struct {
	StreetAddress   string `json:"street_address"`
	ExtendedAddress string `json:"extended_address"`
	Locality        string `json:"locality"`
	Region          string `json:"region"`
	PostalCode      string `json:"postal_code"`
	CountryName     string `json:"country_name"`
}

// CreditCardOptions tweaks how the gateway applies a card payload.
type CreditCardOptions struct {
	// UpdateExistingToken makes the gateway update the named card instead of adding a new one.
	UpdateExistingToken string `json:"update_existing_token"`
}

// CreditCardPayload is the card part of a customer payload. The zero value
// tells the gateway to leave the stored payment method untouched.
type CreditCardPayload struct {
	CardholderName  string             `json:"cardholder_name,omitempty"`
	Number          string             `json:"number,omitempty"`
	CVV             string             `json:"cvv,omitempty"`
	ExpirationMonth string             `json:"expiration_month,omitempty"`
	ExpirationYear  string             `json:"expiration_year,omitempty"`
	BillingAddress  *AddressPayload    `json:"billing_address,omitempty"`
	Options         *CreditCardOptions `json:"options,omitempty"`
}

// IsEmpty reports whether the payload leaves the payment method untouched.
func (p CreditCardPayload) IsEmpty() bool {
	return p == CreditCardPayload{}
}

// CustomerPayload is sent on customer create and update.
type CustomerPayload struct {
	Email      string            `json:"email"`
	CreditCard CreditCardPayload `json:"credit_card"`
}

// SubscriptionPayload is sent on subscription create and update.
type SubscriptionPayload struct {
	PlanID             string `json:"plan_id,omitempty"`
	Price              string `json:"price,omitempty"`
	PaymentMethodToken string `json:"payment_method_token,omitempty"`
	MerchantAccountID  string `json:"merchant_account_id,omitempty"`
}
