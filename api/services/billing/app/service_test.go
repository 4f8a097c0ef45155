package app

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingdb "github.com/tbeaudouin05/stripe-billing/api/services/billing/db"
	gw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway"
)

const testUser = "board-42"

type fakeStore struct {
	accounts      map[string]billingdb.Account
	upserts       int
	statusUpdates int
	err           error
}

func newFakeStore(accts ...billingdb.Account) *fakeStore {
	f := &fakeStore{accounts: map[string]billingdb.Account{}}
	for _, a := range accts {
		f.accounts[a.UserExternalID] = a
	}
	return f
}

func (f *fakeStore) GetAccount(_ context.Context, id string) (billingdb.Account, error) {
	if f.err != nil {
		return billingdb.Account{}, f.err
	}
	acct, ok := f.accounts[id]
	if !ok {
		return billingdb.Account{}, billingdb.ErrAccountNotFound
	}
	return acct, nil
}

func (f *fakeStore) UpsertAccount(_ context.Context, acct billingdb.Account) error {
	f.upserts++
	f.accounts[acct.UserExternalID] = acct
	return nil
}

func (f *fakeStore) UpdateSubscriptionStatus(_ context.Context, id, status string) error {
	f.statusUpdates++
	acct, ok := f.accounts[id]
	if !ok {
		return billingdb.ErrAccountNotFound
	}
	acct.SubscriptionStatus = status
	f.accounts[id] = acct
	return nil
}

func Test_Service_SaveNewAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	card := visa
	client.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).
		Return(gw.CustomerResult{Success: true, Customer: remoteCustomer("cus_1", card)}, nil)
	client.EXPECT().CreateSubscription(gomock.Any(), gw.SubscriptionPayload{
		PlanID:             "41",
		Price:              "15",
		PaymentMethodToken: "cus_1/card_1",
		MerchantAccountID:  "acme",
	}).Return(gw.SubscriptionResult{Success: true, Subscription: gw.RemoteSubscription{ID: "sub_1", Status: gw.SubscriptionStatusActive}}, nil)

	store := newFakeStore()
	svc := NewService(client, store, Settings{MerchantAccountID: "acme"})
	resp, err := svc.SaveSubscribedCustomer(context.Background(), testUser, Attributes{
		Email:  "ada@example.test",
		Number: "4111111111111111",
		PlanID: "41",
		Price:  price(15),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "cus_1", resp.CustomerToken)
	assert.Equal(t, "sub_1", resp.SubscriptionToken)
	assert.Equal(t, gw.SubscriptionStatusActive, resp.SubscriptionStatus)

	stored := store.accounts[testUser]
	assert.Equal(t, "cus_1", stored.CustomerToken)
	assert.Equal(t, "sub_1", stored.SubscriptionToken)
	assert.Equal(t, gw.SubscriptionStatusActive, stored.SubscriptionStatus)
}

func Test_Service_SaveRejectedStillStoresCustomerToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).
		Return(gw.CustomerResult{Success: true, Customer: remoteCustomer("cus_1", visa)}, nil)
	client.EXPECT().CreateSubscription(gomock.Any(), gomock.Any()).
		Return(gw.SubscriptionResult{Success: false}, nil)

	store := newFakeStore()
	svc := NewService(client, store, Settings{})
	resp, err := svc.SaveSubscribedCustomer(context.Background(), testUser, Attributes{Email: "a@b.com", PlanID: "41"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, StepSubscription, resp.FailedStep)
	assert.Equal(t, "cus_1", store.accounts[testUser].CustomerToken)
	assert.Empty(t, store.accounts[testUser].SubscriptionToken)
}

func Test_Service_SaveGatewayErrorIsClassified(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().FindCustomer(gomock.Any(), "cus_gone").Return(gw.RemoteCustomer{}, gw.ErrNotFound)

	store := newFakeStore(billingdb.Account{UserExternalID: testUser, CustomerToken: "cus_gone"})
	svc := NewService(client, store, Settings{})
	_, err := svc.SaveSubscribedCustomer(context.Background(), testUser, Attributes{Number: "4111111111111111"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.upserts)
}

func Test_Service_BadInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(gw.NewMockClient(ctrl), newFakeStore(), Settings{})
	ctx := context.Background()

	_, err := svc.SaveSubscribedCustomer(ctx, " ", Attributes{})
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.ConfirmTransparentRedirect(ctx, testUser, "")
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.RetryCharge(ctx, testUser)
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.GetBillingSummary(ctx, testUser)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCustomer(ctx, testUser), ErrNotFound)
}

func Test_Service_StoreErrorIsDatabaseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newFakeStore()
	store.err = errors.New("connection refused")
	svc := NewService(gw.NewMockClient(ctrl), store, Settings{})

	_, err := svc.GetBillingSummary(context.Background(), testUser)
	assert.ErrorIs(t, err, ErrDatabase)
}

func Test_Service_GetBillingSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().FindCustomer(gomock.Any(), "cus_1").Return(remoteCustomer("cus_1", visa), nil)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").Return(gw.RemoteSubscription{
		ID:              "sub_1",
		Status:          gw.SubscriptionStatusPastDue,
		NextBillingDate: "2024-05-01",
		Transactions:    []gw.Transaction{{ID: "tx_1"}},
	}, nil)

	store := newFakeStore(billingdb.Account{UserExternalID: testUser, CustomerToken: "cus_1", SubscriptionToken: "sub_1"})
	svc := NewService(client, store, Settings{TimeZone: "UTC"})
	summary, err := svc.GetBillingSummary(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "cus_1@example.test", summary.Email)
	assert.True(t, summary.HasBillingInfo)
	assert.Equal(t, "1111", summary.Last4)
	assert.Equal(t, "Boston", summary.BillingAddress.Locality)
	assert.True(t, summary.PastDue)
	require.NotNil(t, summary.NextBillingDate)
	assert.Equal(t, "2024-05-01", summary.NextBillingDate.Format("2006-01-02"))
	require.NotNil(t, summary.MostRecentTransaction)
	assert.Equal(t, "tx_1", summary.MostRecentTransaction.ID)
}

func Test_Service_RetryChargeStoresStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().RetryCharge(gomock.Any(), "sub_1").Return(gw.RetryResult{Transaction: gw.Transaction{ID: "tx_1"}}, nil)
	client.EXPECT().SubmitForSettlement(gomock.Any(), "tx_1").Return(gw.SettlementResult{Success: true}, nil)
	client.EXPECT().FindSubscription(gomock.Any(), "sub_1").
		Return(gw.RemoteSubscription{ID: "sub_1", Status: gw.SubscriptionStatusActive}, nil)

	store := newFakeStore(billingdb.Account{
		UserExternalID:     testUser,
		CustomerToken:      "cus_1",
		SubscriptionToken:  "sub_1",
		SubscriptionStatus: gw.SubscriptionStatusPastDue,
	})
	svc := NewService(client, store, Settings{})
	resp, err := svc.RetryCharge(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, gw.SubscriptionStatusActive, resp.SubscriptionStatus)
	assert.Equal(t, 1, store.statusUpdates)
	assert.Equal(t, gw.SubscriptionStatusActive, store.accounts[testUser].SubscriptionStatus)
}

func Test_Service_ConfirmTransparentRedirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().ConfirmTransparentRedirect(gomock.Any(), "cs_1").
		Return(gw.CustomerResult{Success: true, Customer: remoteCustomer("cus_7")}, nil)

	store := newFakeStore()
	svc := NewService(client, store, Settings{})
	resp, err := svc.ConfirmTransparentRedirect(context.Background(), testUser, "cs_1")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "cus_7", store.accounts[testUser].CustomerToken)
}

func Test_Service_DeleteCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gw.NewMockClient(ctrl)
	client.EXPECT().DeleteCustomer(gomock.Any(), "cus_1").Return(nil)

	store := newFakeStore(billingdb.Account{UserExternalID: testUser, CustomerToken: "cus_1", SubscriptionToken: "sub_1"})
	svc := NewService(client, store, Settings{})
	require.NoError(t, svc.DeleteCustomer(context.Background(), testUser))
	assert.Empty(t, store.accounts[testUser].CustomerToken)
	assert.Equal(t, "sub_1", store.accounts[testUser].SubscriptionToken)
}
