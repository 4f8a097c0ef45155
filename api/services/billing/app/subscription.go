package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
	"github.com/tbeaudouin05/stripe-billing/api/services/billing/timezone"
)

// Subscription is a recurring subscription held by the gateway, with an
// optional locally known status and a memoized remote subscription.
// Both caches are plain fields: a Subscription is not safe for concurrent use.
type Subscription struct {
	gw       gw.Client
	settings Settings
	zones    timezone.Resolver

	token        string
	cachedStatus string
	remote       *gw.RemoteSubscription
	errors       FieldErrors
}

// SubscriptionOption customizes a Subscription at construction.
type SubscriptionOption func(*Subscription)

// WithCachedStatus seeds the status so that Status does not hit the gateway
// until the next Reload.
func WithCachedStatus(status string) SubscriptionOption {
	return func(s *Subscription) { s.cachedStatus = status }
}

// WithZoneResolver replaces timezone.Default.
func WithZoneResolver(r timezone.Resolver) SubscriptionOption {
	return func(s *Subscription) { s.zones = r }
}

// NewSubscription returns a subscription bound to token. An empty token means
// the subscription has not been created on the gateway yet.
func NewSubscription(client gw.Client, settings Settings, token string, opts ...SubscriptionOption) *Subscription {
	s := &Subscription{
		gw:       client,
		settings: settings,
		zones:    timezone.Default,
		token:    token,
		errors:   FieldErrors{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Subscription) Token() string { return s.token }

// Errors returns the field errors of the last failed charge retry.
func (s *Subscription) Errors() FieldErrors { return s.errors }

func (s *Subscription) remoteSubscription(ctx context.Context) (*gw.RemoteSubscription, error) {
	if s.token == "" {
		return nil, nil
	}
	if s.remote == nil {
		rs, err := s.gw.FindSubscription(ctx, s.token)
		if err != nil {
			return nil, fmt.Errorf("find subscription %s: %w", s.token, err)
		}
		s.remote = &rs
	}
	return s.remote, nil
}

// Status returns the cached status when known, otherwise the remote one.
func (s *Subscription) Status(ctx context.Context) (string, error) {
	if s.cachedStatus != "" {
		return s.cachedStatus, nil
	}
	rs, err := s.remoteSubscription(ctx)
	if err != nil || rs == nil {
		return "", err
	}
	return rs.Status, nil
}

func (s *Subscription) PastDue(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	return status == gw.SubscriptionStatusPastDue, err
}

func (s *Subscription) Transactions(ctx context.Context) ([]gw.Transaction, error) {
	rs, err := s.remoteSubscription(ctx)
	if err != nil || rs == nil {
		return nil, err
	}
	return rs.Transactions, nil
}

// MostRecentTransaction returns the transaction with the latest CreatedAt.
// On a tie the first one in gateway order wins.
func (s *Subscription) MostRecentTransaction(ctx context.Context) (*gw.Transaction, error) {
	txs, err := s.Transactions(ctx)
	if err != nil || len(txs) == 0 {
		return nil, err
	}
	latest := txs[0]
	for _, tx := range txs[1:] {
		if tx.CreatedAt.After(latest.CreatedAt) {
			latest = tx
		}
	}
	return &latest, nil
}

// NextBillingDate returns the next billing date in the merchant zone, or the
// zero time when the gateway reports none.
func (s *Subscription) NextBillingDate(ctx context.Context) (time.Time, error) {
	rs, err := s.remoteSubscription(ctx)
	if err != nil || rs == nil || rs.NextBillingDate == "" {
		return time.Time{}, err
	}
	zone, err := s.zones.Resolve(s.settings.TimeZone)
	if err != nil {
		return time.Time{}, err
	}
	return zone.Parse(rs.NextBillingDate)
}

// Save creates the subscription when it has no token yet, otherwise updates
// it. The gateway result is returned untouched. Unlike Customer.Save, a
// rejected save does not populate Errors.
func (s *Subscription) Save(ctx context.Context, payload gw.SubscriptionPayload) (gw.SubscriptionResult, error) {
	if s.settings.MerchantAccountID != "" {
		payload.MerchantAccountID = s.settings.MerchantAccountID
	}
	if s.token != "" {
		return s.update(ctx, payload)
	}
	return s.create(ctx, payload)
}

func (s *Subscription) create(ctx context.Context, payload gw.SubscriptionPayload) (gw.SubscriptionResult, error) {
	res, err := s.gw.CreateSubscription(ctx, payload)
	if err != nil {
		return gw.SubscriptionResult{}, fmt.Errorf("create subscription: %w", err)
	}
	if res.Success {
		s.token = res.Subscription.ID
		remote := res.Subscription
		s.remote = &remote
		s.cachedStatus = ""
		slog.Debug("subscription created", "subscription_token", s.token, "plan_id", payload.PlanID)
	}
	return res, nil
}

func (s *Subscription) update(ctx context.Context, payload gw.SubscriptionPayload) (gw.SubscriptionResult, error) {
	s.remote = nil
	res, err := s.gw.UpdateSubscription(ctx, s.token, payload)
	if err != nil {
		return gw.SubscriptionResult{}, fmt.Errorf("update subscription %s: %w", s.token, err)
	}
	if res.Success {
		s.cachedStatus = ""
		slog.Debug("subscription updated", "subscription_token", s.token, "plan_id", payload.PlanID)
	}
	return res, nil
}

// RetryCharge retries billing a subscription and submits the resulting
// transaction for settlement. Both caches are dropped whatever the outcome.
func (s *Subscription) RetryCharge(ctx context.Context) (bool, error) {
	if s.token == "" {
		return false, fmt.Errorf("%w: subscription has not been created", ErrBadRequest)
	}
	defer s.Reload()

	retry, err := s.gw.RetryCharge(ctx, s.token)
	if err != nil {
		return false, fmt.Errorf("retry charge %s: %w", s.token, err)
	}
	settlement, err := s.gw.SubmitForSettlement(ctx, retry.Transaction.ID)
	if err != nil {
		return false, fmt.Errorf("submit %s for settlement: %w", retry.Transaction.ID, err)
	}
	if settlement.Success {
		s.errors = FieldErrors{}
		slog.Debug("charge retry settled", "subscription_token", s.token, "transaction_id", retry.Transaction.ID)
		return true, nil
	}
	s.errors = Translate(retry.Transaction.Status, retry.Transaction.ProcessorResponseText, settlement.Errors)
	slog.Debug("charge retry failed", "subscription_token", s.token, "transaction_id", retry.Transaction.ID)
	return false, nil
}

// Reload drops the cached status and remote subscription.
func (s *Subscription) Reload() *Subscription {
	s.cachedStatus = ""
	s.remote = nil
	return s
}
