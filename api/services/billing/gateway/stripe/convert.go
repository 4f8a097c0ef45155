package stripegw

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/shopspring/decimal"
    stripe "github.com/stripe/stripe-go"

    gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// Card tokens handed to the app layer carry both the Stripe customer and
// card ids so that a subscription can be created from the token alone.
const tokenSeparator = "/"

func cardToken(customerID, cardID string) string {
    return customerID + tokenSeparator + cardID
}

func splitCardToken(token string) (customerID, cardID string, err error) {
    customerID, cardID, ok := strings.Cut(token, tokenSeparator)
    if !ok || customerID == "" || cardID == "" {
        return "", "", fmt.Errorf("malformed payment method token %q", token)
    }
    return customerID, cardID, nil
}

func optional(v string) *string {
    if v == "" {
        return nil
    }
    return stripe.String(v)
}

func toRemoteCustomer(cust stripe.Customer) gw.RemoteCustomer {
    rc := gw.RemoteCustomer{ID: cust.ID, Email: cust.Email}
    if cust.Sources == nil {
        return rc
    }
    for _, src := range cust.Sources.Data {
        if src == nil || src.Card == nil {
            continue
        }
        c := src.Card
        rc.CreditCards = append(rc.CreditCards, gw.CreditCard{
            Token:           cardToken(cust.ID, c.ID),
            Last4:           c.Last4,
            CardholderName:  c.Name,
            ExpirationMonth: fmt.Sprintf("%02d", c.ExpMonth),
            ExpirationYear:  fmt.Sprintf("%d", c.ExpYear),
            BillingAddress: gw.Address{
                StreetAddress:   c.AddressLine1,
                ExtendedAddress: c.AddressLine2,
                Locality:        c.AddressCity,
                Region:          c.AddressState,
                PostalCode:      c.AddressZip,
                CountryName:     c.AddressCountry,
            },
        })
    }
    return rc
}

func toCardParams(p gw.CreditCardPayload) *stripe.CardParams {
    params := &stripe.CardParams{
        Name:     optional(p.CardholderName),
        Number:   optional(p.Number),
        CVC:      optional(p.CVV),
        ExpMonth: optional(p.ExpirationMonth),
        ExpYear:  optional(p.ExpirationYear),
    }
    if a := p.BillingAddress; a != nil {
        params.AddressLine1 = optional(a.StreetAddress)
        params.AddressLine2 = optional(a.ExtendedAddress)
        params.AddressCity = optional(a.Locality)
        params.AddressState = optional(a.Region)
        params.AddressZip = optional(a.PostalCode)
        params.AddressCountry = optional(a.CountryName)
    }
    return params
}

func subscriptionStatus(s stripe.SubscriptionStatus) string {
    switch s {
    case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
        return gw.SubscriptionStatusActive
    case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
        return gw.SubscriptionStatusPastDue
    case stripe.SubscriptionStatusCanceled:
        return gw.SubscriptionStatusCanceled
    case stripe.SubscriptionStatusIncomplete:
        return gw.SubscriptionStatusPending
    case stripe.SubscriptionStatusIncompleteExpired:
        return gw.SubscriptionStatusExpired
    default:
        return string(s)
    }
}

func toRemoteSubscription(s stripe.Subscription) gw.RemoteSubscription {
    rs := gw.RemoteSubscription{
        ID:     s.ID,
        Status: subscriptionStatus(s.Status),
        Price:  s.Metadata["price"],
    }
    if s.Plan != nil {
        rs.PlanID = s.Plan.ID
    }
    if s.CurrentPeriodEnd > 0 {
        rs.NextBillingDate = time.Unix(s.CurrentPeriodEnd, 0).UTC().Format("2006-01-02")
    }
    if s.Customer != nil && s.DefaultSource != nil {
        rs.PaymentMethodToken = cardToken(s.Customer.ID, s.DefaultSource.ID)
    }
    return rs
}

// toTransaction maps an invoice to a charge attempt. Amounts are in minor units.
func toTransaction(inv stripe.Invoice) gw.Transaction {
    tx := gw.Transaction{
        ID:        inv.ID,
        Status:    string(inv.Status),
        Amount:    decimal.New(inv.AmountDue, -2).StringFixed(2),
        CreatedAt: time.Unix(inv.Created, 0).UTC(),
    }
    if inv.Paid {
        tx.Status = gw.StatusSettled
    }
    return tx
}

var paramAttributes = map[string]struct{ attribute, prefix string }{
    "number":    {"number", "Credit card number "},
    "cvc":       {"CVV", "CVV "},
    "exp_month": {"expiration_month", "Expiration month "},
    "exp_year":  {"expiration_year", "Expiration year "},
}

// cardErrorFields converts a Stripe card error into a failed customer result.
// It reports false for errors that are not about the submitted card.
func cardErrorFields(err error) (gw.CustomerResult, bool) {
    var se *stripe.Error
    if !errors.As(err, &se) {
        return gw.CustomerResult{}, false
    }
    res := gw.CustomerResult{Success: false}
    switch string(se.Code) {
    case "card_declined", "expired_card", "processing_error":
        res.Verification = gw.Verification{Status: gw.StatusProcessorDeclined, ProcessorResponseText: se.Msg}
        return res, true
    case "incorrect_cvc":
        res.Verification = gw.Verification{Status: gw.StatusGatewayRejected, ProcessorResponseText: se.Msg}
        return res, true
    case "invalid_number", "incorrect_number":
        res.Errors = []gw.FieldError{{Attribute: "number", Code: string(se.Code), Message: "Credit card number is invalid"}}
        return res, true
    case "invalid_cvc":
        res.Errors = []gw.FieldError{{Attribute: "CVV", Code: string(se.Code), Message: "CVV is invalid"}}
        return res, true
    case "invalid_expiry_month":
        res.Errors = []gw.FieldError{{Attribute: "expiration_month", Code: string(se.Code), Message: "Expiration month is invalid"}}
        return res, true
    case "invalid_expiry_year":
        res.Errors = []gw.FieldError{{Attribute: "expiration_year", Code: string(se.Code), Message: "Expiration year is invalid"}}
        return res, true
    }
    if pa, ok := paramAttributes[se.Param]; ok {
        res.Errors = []gw.FieldError{{Attribute: pa.attribute, Code: string(se.Code), Message: pa.prefix + se.Msg}}
        return res, true
    }
    if se.Type == stripe.ErrorTypeCard {
        res.Verification = gw.Verification{Status: gw.StatusProcessorDeclined, ProcessorResponseText: se.Msg}
        return res, true
    }
    return gw.CustomerResult{}, false
}
