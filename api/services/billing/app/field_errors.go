package app

import (
	"strings"

	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// FieldErrors maps a lower-cased field name to its validation messages.
type FieldErrors map[string][]string

// Add appends a message to the field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Empty reports whether there are no messages at all.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Merge returns a new map holding the messages of both maps. Messages for a
// field present in both are concatenated, receiver first.
func (e FieldErrors) Merge(other FieldErrors) FieldErrors {
	merged := make(FieldErrors, len(e)+len(other))
	for _, src := range []FieldErrors{e, other} {
		for field, messages := range src {
			merged[field] = append(merged[field], messages...)
		}
	}
	return merged
}

// messagePrefixes lists the gateway field attributes we surface and the
// human-readable prefix the gateway puts in front of each message.
var messagePrefixes = map[string]string{
	"number":           "Credit card number ",
	"CVV":              "CVV ",
	"expiration_month": "Expiration month ",
	"expiration_year":  "Expiration year ",
}

// Translate normalizes a gateway failure into FieldErrors. status and
// responseText come from the verification or transaction attached to the
// failure and may be empty. Field errors on unrecognized attributes are dropped.
func Translate(status, responseText string, fieldErrors []gw.FieldError) FieldErrors {
	errs := FieldErrors{}
	switch status {
	case gw.StatusProcessorDeclined:
		errs.Add("number", "was denied by the payment processor with the message: "+responseText)
	case gw.StatusGatewayRejected:
		errs.Add("cvv", "did not match")
	}
	for _, fe := range fieldErrors {
		prefix, ok := messagePrefixes[fe.Attribute]
		if !ok {
			continue
		}
		errs.Add(strings.ToLower(fe.Attribute), strings.TrimPrefix(fe.Message, prefix))
	}
	return errs
}

// TranslateVerification translates a failed customer result.
func TranslateVerification(res gw.CustomerResult) FieldErrors {
	return Translate(res.Verification.Status, res.Verification.ProcessorResponseText, res.Errors)
}
