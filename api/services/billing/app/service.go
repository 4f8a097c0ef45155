package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	billingdb "github.com/tbeaudouin05/stripe-billing/api/services/billing/db"
	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

// AccountStore persists the link between an external user and its gateway tokens.
type AccountStore interface {
	GetAccount(ctx context.Context, userExternalID string) (billingdb.Account, error)
	UpsertAccount(ctx context.Context, acct billingdb.Account) error
	UpdateSubscriptionStatus(ctx context.Context, userExternalID, status string) error
}

// Service defines the business operations for the billing domain.
type Service interface {
	SaveSubscribedCustomer(ctx context.Context, userExternalID string, attrs Attributes) (SaveResponse, error)
	ConfirmTransparentRedirect(ctx context.Context, userExternalID, queryToken string) (SaveResponse, error)
	GetBillingSummary(ctx context.Context, userExternalID string) (BillingSummary, error)
	RetryCharge(ctx context.Context, userExternalID string) (RetryResponse, error)
	DeleteCustomer(ctx context.Context, userExternalID string) error
}

type serviceImpl struct {
	gw       gw.Client
	store    AccountStore
	settings Settings
	opts     []SubscriptionOption
}

func NewService(g gw.Client, store AccountStore, settings Settings, opts ...SubscriptionOption) Service {
	return serviceImpl{gw: g, store: store, settings: settings, opts: opts}
}

// load returns the stored account, or a fresh one when the user has none yet.
func (s serviceImpl) load(ctx context.Context, userExternalID string) (billingdb.Account, bool, error) {
	if strings.TrimSpace(userExternalID) == "" {
		return billingdb.Account{}, false, fmt.Errorf("%w: user external id is required", ErrBadRequest)
	}
	acct, err := s.store.GetAccount(ctx, userExternalID)
	if errors.Is(err, billingdb.ErrAccountNotFound) {
		return billingdb.Account{UserExternalID: userExternalID}, false, nil
	}
	if err != nil {
		return billingdb.Account{}, false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return acct, true, nil
}

func (s serviceImpl) subscribedCustomer(acct billingdb.Account) *SubscribedCustomer {
	opts := append([]SubscriptionOption{WithCachedStatus(acct.SubscriptionStatus)}, s.opts...)
	return NewSubscribedCustomer(
		NewCustomer(s.gw, acct.CustomerToken),
		NewSubscription(s.gw, s.settings, acct.SubscriptionToken, opts...),
	)
}

// gatewayError classifies an error returned by a gateway round trip.
func gatewayError(err error) error {
	switch {
	case errors.Is(err, ErrBadRequest):
		return err
	case errors.Is(err, gw.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
}

// SaveSubscribedCustomer runs the composite save for the user's account and
// records whatever tokens the gateway handed out, even when a later step failed.
func (s serviceImpl) SaveSubscribedCustomer(ctx context.Context, userExternalID string, attrs Attributes) (SaveResponse, error) {
	acct, _, err := s.load(ctx, userExternalID)
	if err != nil {
		return SaveResponse{}, err
	}
	sc := s.subscribedCustomer(acct)

	outcome, saveErr := sc.Save(ctx, attrs)
	if perr := s.persist(ctx, acct, sc, outcome.Success && saveErr == nil); perr != nil {
		return SaveResponse{}, perr
	}
	if saveErr != nil {
		slog.Error("subscribed customer save failed", "user_external_id", userExternalID, "step", outcome.FailedStep, "err", saveErr)
		return SaveResponse{}, gatewayError(saveErr)
	}

	resp := SaveResponse{
		Success:           outcome.Success,
		FailedStep:        outcome.FailedStep,
		CustomerToken:     sc.Token(),
		SubscriptionToken: sc.SubscriptionToken(),
	}
	if !outcome.Success {
		resp.Errors = sc.Errors()
		slog.Info("subscribed customer rejected", "user_external_id", userExternalID, "step", outcome.FailedStep)
		return resp, nil
	}
	resp.SubscriptionStatus, err = sc.Status(ctx)
	if err != nil {
		return SaveResponse{}, gatewayError(err)
	}
	return resp, nil
}

// persist stores the account tokens, and the refreshed status when refresh is set.
func (s serviceImpl) persist(ctx context.Context, acct billingdb.Account, sc *SubscribedCustomer, refresh bool) error {
	next := acct
	next.CustomerToken = sc.Token()
	if sc.SubscriptionToken() != acct.SubscriptionToken {
		next.SubscriptionToken = sc.SubscriptionToken()
		next.SubscriptionStatus = ""
	}
	if refresh && next.SubscriptionToken != "" {
		status, err := sc.Status(ctx)
		if err != nil {
			return gatewayError(err)
		}
		next.SubscriptionStatus = status
	}
	if next == acct {
		return nil
	}
	if err := s.store.UpsertAccount(ctx, next); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}

// ConfirmTransparentRedirect confirms a gateway-hosted customer form for the user.
func (s serviceImpl) ConfirmTransparentRedirect(ctx context.Context, userExternalID, queryToken string) (SaveResponse, error) {
	if strings.TrimSpace(queryToken) == "" {
		return SaveResponse{}, fmt.Errorf("%w: query token is required", ErrBadRequest)
	}
	acct, _, err := s.load(ctx, userExternalID)
	if err != nil {
		return SaveResponse{}, err
	}
	sc := s.subscribedCustomer(acct)
	ok, err := sc.ConfirmTransparentRedirect(ctx, queryToken)
	if err != nil {
		return SaveResponse{}, gatewayError(err)
	}
	if err := s.persist(ctx, acct, sc, false); err != nil {
		return SaveResponse{}, err
	}
	resp := SaveResponse{Success: ok, CustomerToken: sc.Token(), SubscriptionToken: sc.SubscriptionToken()}
	if !ok {
		resp.FailedStep = StepCustomer
		resp.Errors = sc.Errors()
	}
	return resp, nil
}

// GetBillingSummary reads the customer and subscription details of the user.
func (s serviceImpl) GetBillingSummary(ctx context.Context, userExternalID string) (BillingSummary, error) {
	acct, found, err := s.load(ctx, userExternalID)
	if err != nil {
		return BillingSummary{}, err
	}
	if !found || acct.CustomerToken == "" {
		return BillingSummary{}, fmt.Errorf("%w: no billing customer for %s", ErrNotFound, userExternalID)
	}
	sc := s.subscribedCustomer(acct)

	summary := BillingSummary{CustomerToken: sc.Token(), SubscriptionToken: sc.SubscriptionToken()}
	if summary.Email, err = sc.BillingEmail(ctx); err != nil {
		return BillingSummary{}, gatewayError(err)
	}
	card, err := sc.CreditCard(ctx)
	if err != nil {
		return BillingSummary{}, gatewayError(err)
	}
	if card != nil {
		summary.HasBillingInfo = true
		summary.Last4 = card.Last4
		summary.CardholderName = card.CardholderName
		summary.ExpirationMonth = card.ExpirationMonth
		summary.ExpirationYear = card.ExpirationYear
		summary.BillingAddress = card.BillingAddress
	}
	if sc.SubscriptionToken() == "" {
		return summary, nil
	}

	if summary.SubscriptionStatus, err = sc.Status(ctx); err != nil {
		return BillingSummary{}, gatewayError(err)
	}
	summary.PastDue = summary.SubscriptionStatus == gw.SubscriptionStatusPastDue
	next, err := sc.NextBillingDate(ctx)
	if err != nil {
		return BillingSummary{}, gatewayError(err)
	}
	if !next.IsZero() {
		summary.NextBillingDate = &next
	}
	if summary.MostRecentTransaction, err = sc.MostRecentTransaction(ctx); err != nil {
		return BillingSummary{}, gatewayError(err)
	}
	return summary, nil
}

// RetryCharge retries billing the user's subscription and stores the refreshed status.
func (s serviceImpl) RetryCharge(ctx context.Context, userExternalID string) (RetryResponse, error) {
	acct, _, err := s.load(ctx, userExternalID)
	if err != nil {
		return RetryResponse{}, err
	}
	if acct.SubscriptionToken == "" {
		return RetryResponse{}, fmt.Errorf("%w: no subscription for %s", ErrBadRequest, userExternalID)
	}
	sc := s.subscribedCustomer(acct)

	ok, err := sc.RetryCharge(ctx)
	if err != nil {
		return RetryResponse{}, gatewayError(err)
	}
	status, err := sc.Status(ctx)
	if err != nil {
		return RetryResponse{}, gatewayError(err)
	}
	if status != acct.SubscriptionStatus {
		if err := s.store.UpdateSubscriptionStatus(ctx, userExternalID, status); err != nil {
			return RetryResponse{}, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
	}
	resp := RetryResponse{Success: ok, SubscriptionStatus: status}
	if !ok {
		resp.Errors = sc.Errors()
	}
	slog.Info("charge retried", "user_external_id", userExternalID, "success", ok, "status", status)
	return resp, nil
}

// DeleteCustomer deletes the user's customer on the gateway and forgets its token.
func (s serviceImpl) DeleteCustomer(ctx context.Context, userExternalID string) error {
	acct, found, err := s.load(ctx, userExternalID)
	if err != nil {
		return err
	}
	if !found || acct.CustomerToken == "" {
		return fmt.Errorf("%w: no billing customer for %s", ErrNotFound, userExternalID)
	}
	if err := s.subscribedCustomer(acct).Delete(ctx); err != nil {
		return gatewayError(err)
	}
	acct.CustomerToken = ""
	if err := s.store.UpsertAccount(ctx, acct); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}
