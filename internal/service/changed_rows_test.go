package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/service"
	"github.com/iliyamo/fastshift/internal/store"
	"github.com/iliyamo/fastshift/internal/store/mocks"
)

// Some drivers count only changed rows, so an update that rewrites the
// current value reports zero counts for a row that exists.

func TestPaymentService_RecordOnAlreadyPaidParcel(t *testing.T) {
	ctrl := gomock.NewController(t)
	parcels := mocks.NewMockParcelRepository(ctrl)
	payments := mocks.NewMockPaymentRepository(ctrl)
	svc := service.New(service.Deps{Store: &store.Store{Parcels: parcels, Payments: payments}})

	parcels.EXPECT().MarkPaid(gomock.Any(), "p1").Return(store.UpdateResult{}, nil)
	parcels.EXPECT().Get(gomock.Any(), "p1").
		Return(&model.Parcel{ID: "p1", PaymentStatus: model.PaymentPaid}, nil)
	payments.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("pay2", nil)

	id, err := svc.Payments.Record(context.Background(), service.RecordInput{
		ParcelID: "p1", Amount: decimal.NewFromInt(500), TransactionID: "tx2", CreatedBy: "a@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay2", id)
}

func TestPaymentService_RecordOnMissingParcelStoresNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	parcels := mocks.NewMockParcelRepository(ctrl)
	payments := mocks.NewMockPaymentRepository(ctrl)
	svc := service.New(service.Deps{Store: &store.Store{Parcels: parcels, Payments: payments}})

	parcels.EXPECT().MarkPaid(gomock.Any(), "gone").Return(store.UpdateResult{}, nil)
	parcels.EXPECT().Get(gomock.Any(), "gone").Return(nil, store.ErrNotFound)

	_, err := svc.Payments.Record(context.Background(), service.RecordInput{
		ParcelID: "gone", Amount: decimal.NewFromInt(5), TransactionID: "tx", CreatedBy: "a@x.com",
	})
	requireKind(t, err, service.KindNotFound)
}

func TestRiderService_ReactivationStillPromotes(t *testing.T) {
	ctrl := gomock.NewController(t)
	riders := mocks.NewMockRiderRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := service.New(service.Deps{Store: &store.Store{Riders: riders, Users: users}})

	riders.EXPECT().SetStatus(gomock.Any(), "r1", model.RiderActive).Return(store.UpdateResult{}, nil)
	riders.EXPECT().Get(gomock.Any(), "r1").
		Return(&model.Rider{ID: "r1", Email: "r@x.com", Status: model.RiderActive}, nil)
	users.EXPECT().SetRoleByEmail(gomock.Any(), "r@x.com", model.RoleRider).
		Return(store.UpdateResult{Matched: 1}, nil)

	res, err := svc.Riders.SetStatus(context.Background(), "r1", model.RiderActive, "")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, int64(1), res.User.Matched)
}

func TestRiderService_ActivatingMissingRiderPromotesNobody(t *testing.T) {
	ctrl := gomock.NewController(t)
	riders := mocks.NewMockRiderRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := service.New(service.Deps{Store: &store.Store{Riders: riders, Users: users}})

	riders.EXPECT().SetStatus(gomock.Any(), "nope", model.RiderActive).Return(store.UpdateResult{}, nil)
	riders.EXPECT().Get(gomock.Any(), "nope").Return(nil, store.ErrNotFound)

	res, err := svc.Riders.SetStatus(context.Background(), "nope", model.RiderActive, "r@x.com")
	require.NoError(t, err)
	assert.Nil(t, res.User)
	assert.Zero(t, res.Matched)
}

func TestUserService_UpsertRaceReturnsStoredID(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	svc := service.New(service.Deps{Store: &store.Store{Users: users}})

	gomock.InOrder(
		users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, store.ErrNotFound),
		users.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("", store.ErrDuplicate),
		users.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(&model.User{ID: "u1", Email: "a@x.com"}, nil),
		users.EXPECT().TouchLogin(gomock.Any(), "a@x.com", gomock.Any()).Return(store.UpdateResult{Matched: 1}, nil),
	)

	res, err := svc.Users.Upsert(context.Background(), &model.User{Email: "A@x.com"})
	require.NoError(t, err)
	assert.False(t, res.Inserted)
	assert.Equal(t, "u1", res.ID)
}
