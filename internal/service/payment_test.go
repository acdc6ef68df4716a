package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
	"github.com/iliyamo/fastshift/internal/store"
)

func TestPaymentService_RecordMarksParcelPaid(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		f := newFixture(t, atomic)
		ctx := context.Background()

		parcelID, err := f.svc.Parcels.Create(ctx, &model.Parcel{CreatedBy: "a@x.com"})
		require.NoError(t, err)

		paymentID, err := f.svc.Payments.Record(ctx, service.RecordInput{
			ParcelID: parcelID, Amount: decimal.NewFromInt(500),
			TransactionID: "tx1", CreatedBy: "a@x.com", PaymentMethod: "card",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, paymentID)

		p, err := f.svc.Parcels.Get(ctx, parcelID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, p.PaymentStatus)

		payments, err := f.svc.Payments.List(ctx, "a@x.com", "a@x.com")
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, "tx1", payments[0].TransactionID)
		assert.Equal(t, parcelID, payments[0].ParcelID)
		assert.NotEmpty(t, payments[0].PaidAtString)
	}
}

func TestPaymentService_RecordValidation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	parcelID, err := f.svc.Parcels.Create(ctx, &model.Parcel{CreatedBy: "a@x.com"})
	require.NoError(t, err)

	valid := service.RecordInput{
		ParcelID: parcelID, Amount: decimal.NewFromInt(5), TransactionID: "tx", CreatedBy: "a@x.com",
	}
	for name, mutate := range map[string]func(*service.RecordInput){
		"no parcel":      func(in *service.RecordInput) { in.ParcelID = "" },
		"no amount":      func(in *service.RecordInput) { in.Amount = decimal.Zero },
		"no transaction": func(in *service.RecordInput) { in.TransactionID = "" },
		"no creator":     func(in *service.RecordInput) { in.CreatedBy = "" },
	} {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := f.svc.Payments.Record(ctx, in)
			requireKind(t, err, service.KindBadRequest)
		})
	}

	missing := valid
	missing.ParcelID = "nope"
	_, err = f.svc.Payments.Record(ctx, missing)
	requireKind(t, err, service.KindNotFound)

	all, err := f.st.Payments.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all, "no payment stored on failure")
	p, err := f.svc.Parcels.Get(ctx, parcelID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentUnpaid, p.PaymentStatus)
}

func TestPaymentService_ListOwnership(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	for _, who := range []string{"a@x.com", "b@x.com"} {
		parcelID, err := f.svc.Parcels.Create(ctx, &model.Parcel{CreatedBy: who})
		require.NoError(t, err)
		_, err = f.svc.Payments.Record(ctx, service.RecordInput{
			ParcelID: parcelID, Amount: decimal.NewFromInt(1), TransactionID: "tx-" + who, CreatedBy: who,
		})
		require.NoError(t, err)
	}

	_, err := f.svc.Payments.List(ctx, "b@x.com", "a@x.com")
	requireKind(t, err, service.KindForbidden)

	all, err := f.svc.Payments.List(ctx, "b@x.com", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

type fakeGateway struct {
	secret string
	err    error
	got    int64
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64) (string, error) {
	g.got = amount
	return g.secret, g.err
}

func TestPaymentService_CreateIntent(t *testing.T) {
	gw := &fakeGateway{secret: "pi_secret"}
	svc := service.New(service.Deps{Store: &store.Store{}, Gateway: gw})

	secret, err := svc.Payments.CreateIntent(context.Background(), 1250)
	require.NoError(t, err)
	assert.Equal(t, "pi_secret", secret)
	assert.Equal(t, int64(1250), gw.got)

	_, err = svc.Payments.CreateIntent(context.Background(), 0)
	requireKind(t, err, service.KindBadRequest)

	gw.err = errors.New("card_declined")
	_, err = svc.Payments.CreateIntent(context.Background(), 100)
	requireKind(t, err, service.KindInternal)
}
