package app

import (
	"context"
	"fmt"
	"log/slog"

	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// Customer is a billing customer held by the gateway. The remote customer is
// fetched lazily and kept for the lifetime of the value; build a new Customer
// to observe remote changes made elsewhere. A Customer is not safe for
// concurrent use.
type Customer struct {
	gw     gw.Client
	token  string
	remote *gw.RemoteCustomer
	errors FieldErrors
}

// NewCustomer returns a customer bound to token. An empty token means the
// customer has not been created on the gateway yet.
func NewCustomer(client gw.Client, token string) *Customer {
	return &Customer{gw: client, token: token, errors: FieldErrors{}}
}

func (c *Customer) Token() string { return c.token }

// Errors returns the field errors of the last failed save.
func (c *Customer) Errors() FieldErrors { return c.errors }

func (c *Customer) persisted() bool { return c.token != "" }

func (c *Customer) remoteCustomer(ctx context.Context) (*gw.RemoteCustomer, error) {
	if c.remote == nil {
		rc, err := c.gw.FindCustomer(ctx, c.token)
		if err != nil {
			return nil, fmt.Errorf("find customer %s: %w", c.token, err)
		}
		c.remote = &rc
	}
	return c.remote, nil
}

// CreditCards returns every stored card, in gateway order.
func (c *Customer) CreditCards(ctx context.Context) ([]gw.CreditCard, error) {
	if !c.persisted() {
		return nil, nil
	}
	rc, err := c.remoteCustomer(ctx)
	if err != nil {
		return nil, err
	}
	return rc.CreditCards, nil
}

// CreditCard returns the first stored card, or nil when there is none.
func (c *Customer) CreditCard(ctx context.Context) (*gw.CreditCard, error) {
	cards, err := c.CreditCards(ctx)
	if err != nil || len(cards) == 0 {
		return nil, err
	}
	card := cards[0]
	return &card, nil
}

func (c *Customer) HasBillingInfo(ctx context.Context) (bool, error) {
	card, err := c.CreditCard(ctx)
	return card != nil, err
}

func (c *Customer) PaymentMethodToken(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.Token })
}

// BillingEmail returns the email stored on the gateway.
func (c *Customer) BillingEmail(ctx context.Context) (string, error) {
	if !c.persisted() {
		return "", nil
	}
	rc, err := c.remoteCustomer(ctx)
	if err != nil {
		return "", err
	}
	return rc.Email, nil
}

func (c *Customer) Last4(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.Last4 })
}

func (c *Customer) CardholderName(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.CardholderName })
}

func (c *Customer) ExpirationMonth(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.ExpirationMonth })
}

func (c *Customer) ExpirationYear(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.ExpirationYear })
}

func (c *Customer) StreetAddress(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.BillingAddress.StreetAddress })
}

func (c *Customer) ExtendedAddress(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.BillingAddress.ExtendedAddress })
}

func (c *Customer) Locality(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.BillingAddress.Locality })
}

func (c *Customer) Region(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.BillingAddress.Region })
}

func (c *Customer) PostalCode(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.BillingAddress.PostalCode })
}

func (c *Customer) CountryName(ctx context.Context) (string, error) {
	return c.cardField(ctx, func(card gw.CreditCard) string { return card.BillingAddress.CountryName })
}

func (c *Customer) cardField(ctx context.Context, field func(gw.CreditCard) string) (string, error) {
	card, err := c.CreditCard(ctx)
	if err != nil || card == nil {
		return "", err
	}
	return field(*card), nil
}

// Save creates the customer when it has no token yet, otherwise updates it.
// A false result with a nil error means the gateway rejected the data; the
// reasons are available from Errors.
func (c *Customer) Save(ctx context.Context, attrs Attributes) (bool, error) {
	payload, err := c.buildPayload(ctx, attrs)
	if err != nil {
		return false, err
	}
	var res gw.CustomerResult
	if c.persisted() {
		res, err = c.gw.UpdateCustomer(ctx, c.token, payload)
		if err != nil {
			return false, fmt.Errorf("update customer %s: %w", c.token, err)
		}
	} else {
		res, err = c.gw.CreateCustomer(ctx, payload)
		if err != nil {
			return false, fmt.Errorf("create customer: %w", err)
		}
	}
	return c.handleResult(res), nil
}

// ConfirmTransparentRedirect confirms a customer form posted straight to the gateway.
func (c *Customer) ConfirmTransparentRedirect(ctx context.Context, queryToken string) (bool, error) {
	res, err := c.gw.ConfirmTransparentRedirect(ctx, queryToken)
	if err != nil {
		return false, fmt.Errorf("confirm transparent redirect: %w", err)
	}
	return c.handleResult(res), nil
}

// Delete removes the customer on the gateway. The value should be discarded afterwards.
func (c *Customer) Delete(ctx context.Context) error {
	if !c.persisted() {
		return fmt.Errorf("%w: customer has not been created", ErrBadRequest)
	}
	if err := c.gw.DeleteCustomer(ctx, c.token); err != nil {
		return fmt.Errorf("delete customer %s: %w", c.token, err)
	}
	return nil
}

func (c *Customer) buildPayload(ctx context.Context, attrs Attributes) (gw.CustomerPayload, error) {
	payload := gw.CustomerPayload{Email: attrs.Email}
	if !attrs.hasBillingInfo() {
		return payload, nil
	}
	payload.CreditCard = gw.CreditCardPayload{
		CardholderName:  attrs.CardholderName,
		Number:          attrs.Number,
		CVV:             attrs.CVV,
		ExpirationMonth: attrs.ExpirationMonth,
		ExpirationYear:  attrs.ExpirationYear,
		BillingAddress: &gw.AddressPayload{
			StreetAddress:   attrs.StreetAddress,
			ExtendedAddress: attrs.ExtendedAddress,
			Locality:        attrs.Locality,
			Region:          attrs.Region,
			PostalCode:      attrs.PostalCode,
			CountryName:     attrs.CountryName,
		},
	}
	existing, err := c.PaymentMethodToken(ctx)
	if err != nil {
		return gw.CustomerPayload{}, err
	}
	if existing != "" {
		payload.CreditCard.Options = &gw.CreditCardOptions{UpdateExistingToken: existing}
	}
	return payload, nil
}

func (c *Customer) handleResult(res gw.CustomerResult) bool {
	if !res.Success {
		c.errors = TranslateVerification(res)
		slog.Debug("customer rejected by gateway", "customer_token", c.token, "fields", len(c.errors))
		return false
	}
	c.token = res.Customer.ID
	customer := res.Customer
	c.remote = &customer
	c.errors = FieldErrors{}
	slog.Debug("customer saved", "customer_token", c.token)
	return true
}
