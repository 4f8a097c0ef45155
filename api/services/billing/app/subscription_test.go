package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
	"github.com/tbeaudouin05/stripe-billing/api/services/billing/timezone"
)

func Test_Subscription_CachedStatusSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)

	s := NewSubscription(client, DefaultSettings(), "sub_1", WithCachedStatus(gw.SubscriptionStatusActive))
	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusActive, status)

	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", Status: gw.SubscriptionStatusPastDue}, nil).Times(1)

	status, err = s.Reload().Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusPastDue, status)

	// memoized
	pastDue, err := s.PastDue(context.Background())
	require.NoError(t, err)
	assert.True(t, pastDue)
}

func Test_Subscription_NoTokenHasNoStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewSubscription(gw.NewMockClient(ctrl), DefaultSettings(), "")

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, status)

	txs, err := s.Transactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txs)

	next, err := s.NextBillingDate(context.Background())
	require.NoError(t, err)
	assert.True(t, next.IsZero())
}

func Test_Subscription_MostRecentTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").Return(gw.RemoteSubscription{
		ID: "sub_1",
		Transactions: []gw.Transaction{
			{ID: "tx_old", CreatedAt: t0},
			{ID: "tx_a", CreatedAt: t0.Add(48 * time.Hour)},
			{ID: "tx_b", CreatedAt: t0.Add(48 * time.Hour)},
			{ID: "tx_mid", CreatedAt: t0.Add(24 * time.Hour)},
		},
	}, nil)

	s := NewSubscription(client, DefaultSettings(), "sub_1")
	tx, err := s.MostRecentTransaction(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "tx_a", tx.ID)
}

func Test_Subscription_MostRecentTransaction_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").Return(gw.RemoteSubscription{ID: "sub_1"}, nil)

	tx, err := NewSubscription(client, DefaultSettings(), "sub_1").MostRecentTransaction(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func Test_Subscription_NextBillingDateInMerchantZone(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", NextBillingDate: "2024-03-15"}, nil)

	s := NewSubscription(client, Settings{TimeZone: "Tokyo"}, "sub_1")
	next, err := s.NextBillingDate(context.Background())
	require.NoError(t, err)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 15, 0, 0, 0, 0, tokyo).Equal(next))
}

func Test_Subscription_NextBillingDateUsesResolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", NextBillingDate: "2024-03-15"}, nil)

	var asked string
	resolver := timezone.ResolverFunc(func(name string) (timezone.Zone, error) {
		asked = name
		return timezone.Resolve("UTC")
	})
	s := NewSubscription(client, Settings{TimeZone: "Somewhere"}, "sub_1", WithZoneResolver(resolver))
	next, err := s.NextBillingDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", asked)
	assert.True(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Equal(next))
}

func Test_Subscription_CreateInjectsMerchantAccountAndAdoptsToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().CreateSubscription(gomock.Any(), gw.SubscriptionPayload{
		PlanID:             "41",
		Price:              "15",
		PaymentMethodToken: "cus_1/card_1",
		MerchantAccountID:  "acme_usd",
	}).Return(gw.SubscriptionResult{
		Success:      true,
		Subscription: gw.RemoteSubscription{ID: "sub_new", Status: gw.SubscriptionStatusActive},
	}, nil)

	s := NewSubscription(client, Settings{MerchantAccountID: "acme_usd"}, "")
	res, err := s.Save(context.Background(), gw.SubscriptionPayload{PlanID: "41", Price: "15", PaymentMethodToken: "cus_1/card_1"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "sub_new", s.Token())

	// served from the cached create result
	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusActive, status)
}

func Test_Subscription_FailedCreateKeepsNoTokenAndNoErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().CreateSubscription(gomock.Any(), gw.SubscriptionPayload{PlanID: "41"}).Return(gw.SubscriptionResult{
		Success: false,
		Errors:  []gw.FieldError{{Attribute: "number", Message: "Credit card number is invalid"}},
	}, nil)

	s := NewSubscription(client, Settings{}, "")
	res, err := s.Save(context.Background(), gw.SubscriptionPayload{PlanID: "41"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, res.Errors, 1)
	assert.Empty(t, s.Token())
	assert.True(t, s.Errors().Empty())
}

func Test_Subscription_UpdateInvalidatesRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	gomock.InOrder(
		client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
			Return(gw.RemoteSubscription{ID: "sub_1", PlanID: "40"}, nil),
		client.EXPECT().UpdateSubscription(gomock.Any(), "sub_1", gw.SubscriptionPayload{PlanID: "41"}).
			Return(gw.SubscriptionResult{Success: true, Subscription: gw.RemoteSubscription{ID: "sub_1", PlanID: "41"}}, nil),
		client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
			Return(gw.RemoteSubscription{ID: "sub_1", PlanID: "41", Status: gw.SubscriptionStatusActive}, nil),
	)

	s := NewSubscription(client, Settings{}, "sub_1")
	_, err := s.Transactions(context.Background())
	require.NoError(t, err)

	res, err := s.Save(context.Background(), gw.SubscriptionPayload{PlanID: "41"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusActive, status)
}

func Test_Subscription_RetryChargeSettles(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().RetryCharge(gomock.Any(), "sub_1").
		Return(gw.RetryResult{Transaction: gw.Transaction{ID: "tx_1"}}, nil)
	client.EXPECT().SubmitForSettlement(gomock.Any(), "tx_1").Return(gw.SettlementResult{Success: true}, nil)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", Status: gw.SubscriptionStatusActive}, nil).Times(1)

	s := NewSubscription(client, Settings{}, "sub_1", WithCachedStatus(gw.SubscriptionStatusPastDue))
	ok, err := s.RetryCharge(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Errors().Empty())

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusActive, status)
}

func Test_Subscription_RetryChargeDeclined(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().RetryCharge(gomock.Any(), "sub_1").Return(gw.RetryResult{Transaction: gw.Transaction{
		ID:                    "tx_1",
		Status:                gw.StatusProcessorDeclined,
		ProcessorResponseText: "Insufficient Funds",
	}}, nil)
	client.EXPECT().SubmitForSettlement(gomock.Any(), "tx_1").Return(gw.SettlementResult{Success: false}, nil)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", Status: gw.SubscriptionStatusPastDue}, nil).Times(1)

	s := NewSubscription(client, Settings{}, "sub_1", WithCachedStatus(gw.SubscriptionStatusPastDue))
	ok, err := s.RetryCharge(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, FieldErrors{
		"number": {"was denied by the payment processor with the message: Insufficient Funds"},
	}, s.Errors())

	// cache dropped even though the retry failed
	_, err = s.Status(context.Background())
	require.NoError(t, err)
}

func Test_Subscription_RetryChargeErrorStillInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	boom := errors.New("gateway timeout")
	client.EXPECT().RetryCharge(gomock.Any(), "sub_1").Return(gw.RetryResult{}, boom)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", Status: gw.SubscriptionStatusPastDue}, nil).Times(1)

	s := NewSubscription(client, Settings{}, "sub_1", WithCachedStatus(gw.SubscriptionStatusActive))
	ok, err := s.RetryCharge(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusPastDue, status)
}

func Test_Subscription_RetryChargeWithoutToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl) // no gateway call expected

	s := NewSubscription(client, Settings{}, "", WithCachedStatus(gw.SubscriptionStatusPastDue))
	ok, err := s.RetryCharge(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrBadRequest)

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.SubscriptionStatusPastDue, status)
}
