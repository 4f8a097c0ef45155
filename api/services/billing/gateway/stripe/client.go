package stripegw

import (
    "context"
    "errors"
    "fmt"

    stripe "github.com/stripe/stripe-go"
    "github.com/stripe/stripe-go/card"
    "github.com/stripe/stripe-go/checkout/session"
    "github.com/stripe/stripe-go/customer"
    "github.com/stripe/stripe-go/invoice"
    "github.com/stripe/stripe-go/paymentintent"
    "github.com/stripe/stripe-go/sub"

    gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// SetKey configures the Stripe SDK key once during bootstrap.
func SetKey(key string) { stripe.Key = key }

// client is the Stripe SDK-backed implementation of the gateway.
// Customers map to Stripe customers with card sources, subscription charges
// to invoices, and transparent redirects to Checkout Sessions.
type client struct{}

// New returns a gateway.Client backed by the official Stripe SDK.
func New() gw.Client { return client{} }

func (client) FindCustomer(ctx context.Context, token string) (gw.RemoteCustomer, error) {
    params := &stripe.CustomerParams{}
    params.Context = ctx
    cust, err := customer.Get(token, params)
    if err != nil {
        return gw.RemoteCustomer{}, notFound(err)
    }
    if cust == nil || cust.Deleted {
        return gw.RemoteCustomer{}, fmt.Errorf("customer %s: %w", token, gw.ErrNotFound)
    }
    return toRemoteCustomer(*cust), nil
}

func (c client) CreateCustomer(ctx context.Context, payload gw.CustomerPayload) (gw.CustomerResult, error) {
    cust, err := customer.New(newCustomerParams(ctx, payload))
    if err != nil {
        return rejectedCustomer(err)
    }
    return gw.CustomerResult{Success: true, Customer: toRemoteCustomer(*cust)}, nil
}

// newCustomerParams leaves email and source unset when the payload has none.
func newCustomerParams(ctx context.Context, payload gw.CustomerPayload) *stripe.CustomerParams {
    params := &stripe.CustomerParams{Email: optional(payload.Email)}
    params.Context = ctx
    if !payload.CreditCard.IsEmpty() {
        params.Source = &stripe.SourceParams{Card: toCardParams(payload.CreditCard)}
    }
    return params
}

func (c client) UpdateCustomer(ctx context.Context, token string, payload gw.CustomerPayload) (gw.CustomerResult, error) {
    params := &stripe.CustomerParams{}
    params.Context = ctx
    params.Email = optional(payload.Email)

    existing := ""
    if payload.CreditCard.Options != nil {
        existing = payload.CreditCard.Options.UpdateExistingToken
    }
    switch {
    case payload.CreditCard.IsEmpty():
    case existing != "" && payload.CreditCard.Number == "":
        // Stripe cards are immutable apart from holder, expiry and address.
        if res, err := c.updateCard(ctx, token, existing, payload.CreditCard); err != nil || !res.Success {
            return res, err
        }
    default:
        // A new source becomes the default and Stripe deletes the previous default card.
        params.Source = &stripe.SourceParams{Card: toCardParams(payload.CreditCard)}
    }

    cust, err := customer.Update(token, params)
    if err != nil {
        return rejectedCustomer(notFound(err))
    }
    return gw.CustomerResult{Success: true, Customer: toRemoteCustomer(*cust)}, nil
}

func (client) updateCard(ctx context.Context, customerID, existing string, payload gw.CreditCardPayload) (gw.CustomerResult, error) {
    _, cardID, err := splitCardToken(existing)
    if err != nil {
        return gw.CustomerResult{}, err
    }
    params := toCardParams(payload)
    params.Number = nil
    params.CVC = nil
    params.Customer = stripe.String(customerID)
    params.Context = ctx
    if _, err := card.Update(cardID, params); err != nil {
        return rejectedCustomer(notFound(err))
    }
    return gw.CustomerResult{Success: true}, nil
}

func (client) DeleteCustomer(ctx context.Context, token string) error {
    params := &stripe.CustomerParams{}
    params.Context = ctx
    _, err := customer.Del(token, params)
    return notFound(err)
}

// ConfirmTransparentRedirect treats the query token as a Checkout Session id
// and returns the customer the session completed for.
func (client) ConfirmTransparentRedirect(ctx context.Context, queryToken string) (gw.CustomerResult, error) {
    params := &stripe.CheckoutSessionParams{}
    params.Context = ctx
    sess, err := session.Get(queryToken, params)
    if err != nil {
        return rejectedCustomer(notFound(err))
    }
    if sess.Customer == nil || sess.Customer.ID == "" {
        return gw.CustomerResult{Success: false}, nil
    }
    custParams := &stripe.CustomerParams{}
    custParams.Context = ctx
    cust, err := customer.Get(sess.Customer.ID, custParams)
    if err != nil {
        return gw.CustomerResult{}, notFound(err)
    }
    return gw.CustomerResult{Success: true, Customer: toRemoteCustomer(*cust)}, nil
}

func (client) FindSubscription(ctx context.Context, token string) (gw.RemoteSubscription, error) {
    params := &stripe.SubscriptionParams{}
    params.Context = ctx
    s, err := sub.Get(token, params)
    if err != nil {
        return gw.RemoteSubscription{}, notFound(err)
    }
    rs := toRemoteSubscription(*s)
    if rs.Transactions, err = listTransactions(ctx, token); err != nil {
        return gw.RemoteSubscription{}, err
    }
    return rs, nil
}

func listTransactions(ctx context.Context, subscriptionID string) ([]gw.Transaction, error) {
    params := &stripe.InvoiceListParams{Subscription: stripe.String(subscriptionID)}
    params.Context = ctx
    var txs []gw.Transaction
    it := invoice.List(params)
    for it.Next() {
        txs = append(txs, toTransaction(*it.Invoice()))
    }
    if err := it.Err(); err != nil {
        return nil, fmt.Errorf("list invoices for %s: %w", subscriptionID, err)
    }
    return txs, nil
}

func (client) CreateSubscription(ctx context.Context, payload gw.SubscriptionPayload) (gw.SubscriptionResult, error) {
    customerID, cardID, err := splitCardToken(payload.PaymentMethodToken)
    if err != nil {
        return gw.SubscriptionResult{Success: false, Errors: []gw.FieldError{{Attribute: "payment_method_token", Message: err.Error()}}}, nil
    }
    params := &stripe.SubscriptionParams{
        Customer:      stripe.String(customerID),
        DefaultSource: stripe.String(cardID),
        Items:         []*stripe.SubscriptionItemsParams{{Plan: stripe.String(payload.PlanID)}},
    }
    params.Context = ctx
    addSubscriptionMetadata(&params.Params, payload)
    s, err := sub.New(params)
    if err != nil {
        return rejectedSubscription(err)
    }
    return gw.SubscriptionResult{Success: true, Subscription: toRemoteSubscription(*s)}, nil
}

func (client) UpdateSubscription(ctx context.Context, token string, payload gw.SubscriptionPayload) (gw.SubscriptionResult, error) {
    params := &stripe.SubscriptionParams{}
    params.Context = ctx
    if payload.PaymentMethodToken != "" {
        _, cardID, err := splitCardToken(payload.PaymentMethodToken)
        if err != nil {
            return gw.SubscriptionResult{Success: false, Errors: []gw.FieldError{{Attribute: "payment_method_token", Message: err.Error()}}}, nil
        }
        params.DefaultSource = stripe.String(cardID)
    }
    if payload.PlanID != "" {
        current, err := sub.Get(token, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
        if err != nil {
            return gw.SubscriptionResult{}, notFound(err)
        }
        item := &stripe.SubscriptionItemsParams{Plan: stripe.String(payload.PlanID)}
        if current.Items != nil && len(current.Items.Data) > 0 {
            item.ID = stripe.String(current.Items.Data[0].ID)
        }
        params.Items = []*stripe.SubscriptionItemsParams{item}
    }
    addSubscriptionMetadata(&params.Params, payload)
    s, err := sub.Update(token, params)
    if err != nil {
        return rejectedSubscription(notFound(err))
    }
    return gw.SubscriptionResult{Success: true, Subscription: toRemoteSubscription(*s)}, nil
}

// addSubscriptionMetadata records what Stripe subscriptions cannot express natively.
func addSubscriptionMetadata(p *stripe.Params, payload gw.SubscriptionPayload) {
    if payload.Price != "" {
        p.AddMetadata("price", payload.Price)
    }
    if payload.MerchantAccountID != "" {
        p.AddMetadata("merchant_account_id", payload.MerchantAccountID)
    }
}

// RetryCharge pays the latest open invoice of the subscription. A declined
// card is reported on the returned transaction rather than as an error.
func (client) RetryCharge(ctx context.Context, subscriptionToken string) (gw.RetryResult, error) {
    params := &stripe.SubscriptionParams{}
    params.Context = ctx
    params.AddExpand("latest_invoice")
    s, err := sub.Get(subscriptionToken, params)
    if err != nil {
        return gw.RetryResult{}, notFound(err)
    }
    if s.LatestInvoice == nil || s.LatestInvoice.ID == "" {
        return gw.RetryResult{}, fmt.Errorf("subscription %s has no invoice to retry", subscriptionToken)
    }
    inv := s.LatestInvoice
    if inv.Paid {
        return gw.RetryResult{Transaction: toTransaction(*inv)}, nil
    }
    payParams := &stripe.InvoicePayParams{}
    payParams.Context = ctx
    paid, err := invoice.Pay(inv.ID, payParams)
    if err != nil {
        var se *stripe.Error
        if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
            tx := toTransaction(*inv)
            tx.Status = gw.StatusProcessorDeclined
            tx.ProcessorResponseText = se.Msg
            return gw.RetryResult{Transaction: tx}, nil
        }
        return gw.RetryResult{}, err
    }
    return gw.RetryResult{Transaction: toTransaction(*paid)}, nil
}

// SubmitForSettlement captures the payment of an invoice when it is still
// authorized only; an already paid invoice counts as settled.
func (client) SubmitForSettlement(ctx context.Context, transactionID string) (gw.SettlementResult, error) {
    params := &stripe.InvoiceParams{}
    params.Context = ctx
    params.AddExpand("payment_intent")
    inv, err := invoice.Get(transactionID, params)
    if err != nil {
        return gw.SettlementResult{}, notFound(err)
    }
    if inv.Paid {
        return gw.SettlementResult{Success: true}, nil
    }
    pi := inv.PaymentIntent
    if pi == nil || pi.Status != stripe.PaymentIntentStatusRequiresCapture {
        return gw.SettlementResult{Success: false}, nil
    }
    captureParams := &stripe.PaymentIntentCaptureParams{}
    captureParams.Context = ctx
    if _, err := paymentintent.Capture(pi.ID, captureParams); err != nil {
        if res, ok := cardErrorFields(err); ok {
            return gw.SettlementResult{Success: false, Errors: res.Errors}, nil
        }
        return gw.SettlementResult{}, err
    }
    return gw.SettlementResult{Success: true}, nil
}

func notFound(err error) error {
    var se *stripe.Error
    if errors.As(err, &se) && (se.HTTPStatusCode == 404 || se.Code == stripe.ErrorCodeResourceMissing) {
        return fmt.Errorf("%s: %w", se.Msg, gw.ErrNotFound)
    }
    return err
}

func rejectedCustomer(err error) (gw.CustomerResult, error) {
    res, ok := cardErrorFields(err)
    if !ok {
        return gw.CustomerResult{}, err
    }
    return res, nil
}

func rejectedSubscription(err error) (gw.SubscriptionResult, error) {
    res, ok := cardErrorFields(err)
    if !ok {
        return gw.SubscriptionResult{}, err
    }
    return gw.SubscriptionResult{Success: false, Errors: res.Errors}, nil
}
