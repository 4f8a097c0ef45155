package app

import (
	"context"
	"time"

	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// SaveStep names a step of SubscribedCustomer.Save.
type SaveStep string

const (
	StepCustomer     SaveStep = "customer"
	StepActivation   SaveStep = "activation"
	StepSubscription SaveStep = "subscription"
)

// SaveOutcome reports how far SubscribedCustomer.Save got.
type SaveOutcome struct {
	Success bool
	// FailedStep is empty on success.
	FailedStep SaveStep
	// Subscription is the raw gateway result when the subscription step ran.
	Subscription *gw.SubscriptionResult
}

// SubscribedCustomer presents one customer and its subscription as a single
// resource. It owns both values exclusively.
type SubscribedCustomer struct {
	customer     *Customer
	subscription *Subscription
}

func NewSubscribedCustomer(customer *Customer, subscription *Subscription) *SubscribedCustomer {
	return &SubscribedCustomer{customer: customer, subscription: subscription}
}

type saveStep struct {
	name SaveStep
	run  func(ctx context.Context, attrs Attributes, out *SaveOutcome) (bool, error)
}

// Save applies customer changes, reactivates a past due subscription and then
// applies subscription changes, stopping at the first step that fails.
// Steps already applied are not rolled back.
func (sc *SubscribedCustomer) Save(ctx context.Context, attrs Attributes) (SaveOutcome, error) {
	steps := []saveStep{
		{StepCustomer, sc.applyCustomerChanges},
		{StepActivation, sc.ensureSubscriptionActive},
		{StepSubscription, sc.applySubscriptionChanges},
	}
	var out SaveOutcome
	for _, step := range steps {
		ok, err := step.run(ctx, attrs, &out)
		if err != nil {
			out.FailedStep = step.name
			return out, err
		}
		if !ok {
			out.FailedStep = step.name
			return out, nil
		}
	}
	out.Success = true
	return out, nil
}

func (sc *SubscribedCustomer) applyCustomerChanges(ctx context.Context, attrs Attributes, _ *SaveOutcome) (bool, error) {
	if sc.customer.Token() != "" && !attrs.changesCustomer() {
		return true, nil
	}
	return sc.customer.Save(ctx, attrs)
}

func (sc *SubscribedCustomer) ensureSubscriptionActive(ctx context.Context, _ Attributes, _ *SaveOutcome) (bool, error) {
	pastDue, err := sc.subscription.PastDue(ctx)
	if err != nil {
		return false, err
	}
	if !pastDue {
		return true, nil
	}
	return sc.subscription.RetryCharge(ctx)
}

func (sc *SubscribedCustomer) applySubscriptionChanges(ctx context.Context, attrs Attributes, out *SaveOutcome) (bool, error) {
	if !attrs.changesSubscription() {
		return true, nil
	}
	paymentMethodToken, err := sc.customer.PaymentMethodToken(ctx)
	if err != nil {
		return false, err
	}
	res, err := sc.subscription.Save(ctx, gw.SubscriptionPayload{
		PlanID:             attrs.PlanID,
		Price:              attrs.priceString(),
		PaymentMethodToken: paymentMethodToken,
	})
	if err != nil {
		return false, err
	}
	out.Subscription = &res
	return res.Success, nil
}

// Errors merges the customer and subscription field errors.
func (sc *SubscribedCustomer) Errors() FieldErrors {
	return sc.customer.Errors().Merge(sc.subscription.Errors())
}

func (sc *SubscribedCustomer) Token() string { return sc.customer.Token() }

func (sc *SubscribedCustomer) SubscriptionToken() string { return sc.subscription.Token() }

func (sc *SubscribedCustomer) CreditCard(ctx context.Context) (*gw.CreditCard, error) {
	return sc.customer.CreditCard(ctx)
}

func (sc *SubscribedCustomer) CreditCards(ctx context.Context) ([]gw.CreditCard, error) {
	return sc.customer.CreditCards(ctx)
}

func (sc *SubscribedCustomer) HasBillingInfo(ctx context.Context) (bool, error) {
	return sc.customer.HasBillingInfo(ctx)
}

func (sc *SubscribedCustomer) PaymentMethodToken(ctx context.Context) (string, error) {
	return sc.customer.PaymentMethodToken(ctx)
}

func (sc *SubscribedCustomer) BillingEmail(ctx context.Context) (string, error) {
	return sc.customer.BillingEmail(ctx)
}

func (sc *SubscribedCustomer) Last4(ctx context.Context) (string, error) {
	return sc.customer.Last4(ctx)
}

func (sc *SubscribedCustomer) CardholderName(ctx context.Context) (string, error) {
	return sc.customer.CardholderName(ctx)
}

func (sc *SubscribedCustomer) ExpirationMonth(ctx context.Context) (string, error) {
	return sc.customer.ExpirationMonth(ctx)
}

func (sc *SubscribedCustomer) ExpirationYear(ctx context.Context) (string, error) {
	return sc.customer.ExpirationYear(ctx)
}

func (sc *SubscribedCustomer) StreetAddress(ctx context.Context) (string, error) {
	return sc.customer.StreetAddress(ctx)
}

func (sc *SubscribedCustomer) ExtendedAddress(ctx context.Context) (string, error) {
	return sc.customer.ExtendedAddress(ctx)
}

func (sc *SubscribedCustomer) Locality(ctx context.Context) (string, error) {
	return sc.customer.Locality(ctx)
}

func (sc *SubscribedCustomer) Region(ctx context.Context) (string, error) {
	return sc.customer.Region(ctx)
}

func (sc *SubscribedCustomer) PostalCode(ctx context.Context) (string, error) {
	return sc.customer.PostalCode(ctx)
}

func (sc *SubscribedCustomer) CountryName(ctx context.Context) (string, error) {
	return sc.customer.CountryName(ctx)
}

func (sc *SubscribedCustomer) Delete(ctx context.Context) error {
	return sc.customer.Delete(ctx)
}

func (sc *SubscribedCustomer) ConfirmTransparentRedirect(ctx context.Context, queryToken string) (bool, error) {
	return sc.customer.ConfirmTransparentRedirect(ctx, queryToken)
}

func (sc *SubscribedCustomer) Reload() *Subscription { return sc.subscription.Reload() }

func (sc *SubscribedCustomer) Status(ctx context.Context) (string, error) {
	return sc.subscription.Status(ctx)
}

func (sc *SubscribedCustomer) PastDue(ctx context.Context) (bool, error) {
	return sc.subscription.PastDue(ctx)
}

func (sc *SubscribedCustomer) NextBillingDate(ctx context.Context) (time.Time, error) {
	return sc.subscription.NextBillingDate(ctx)
}

func (sc *SubscribedCustomer) Transactions(ctx context.Context) ([]gw.Transaction, error) {
	return sc.subscription.Transactions(ctx)
}

func (sc *SubscribedCustomer) MostRecentTransaction(ctx context.Context) (*gw.Transaction, error) {
	return sc.subscription.MostRecentTransaction(ctx)
}

func (sc *SubscribedCustomer) RetryCharge(ctx context.Context) (bool, error) {
	return sc.subscription.RetryCharge(ctx)
}
