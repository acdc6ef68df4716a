package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/repository/mongostore"
	"github.com/iliyamo/fastshift/internal/store"
)

// newLiveStore connects to MONGODB_URI and hands out a throwaway database.
func newLiveStore(t *testing.T) *store.Store {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := mongostore.Connect(ctx, uri)
	require.NoError(t, err)

	dbName := "fastshift_test_" + primitive.NewObjectID().Hex()
	require.NoError(t, mongostore.EnsureIndexes(ctx, client.Database(dbName)))
	st := mongostore.NewStore(client, dbName)
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = st.Close()
	})
	return st
}

func TestLive_TransitionsFollowTheOrder(t *testing.T) {
	st := newLiveStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := st.Parcels.Insert(ctx, &model.Parcel{
		CreatedBy:      "a@x.com",
		PaymentStatus:  model.PaymentUnpaid,
		DeliveryStatus: model.DeliveryNotCollected,
		CashoutStatus:  model.CashoutPending,
		CreatedAt:      now,
		Extra:          model.Extra{"title": "Docs"},
	})
	require.NoError(t, err)

	a := model.Assignment{RiderID: "r1", RiderName: "R", RiderEmail: "r@x.com", At: now}

	// unpaid parcels are not assignable
	res, err := st.Parcels.Assign(ctx, id, a)
	require.NoError(t, err)
	assert.Zero(t, res.Matched)

	// nothing skips ahead of the assignment
	res, err = st.Parcels.Advance(ctx, id, model.DeliveryInTransit, now)
	require.NoError(t, err)
	assert.Zero(t, res.Matched)

	res, err = st.Parcels.MarkPaid(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	// repeating the payment still matches the parcel
	res, err = st.Parcels.MarkPaid(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	assert.Zero(t, res.Modified)

	res, err = st.Parcels.Assign(ctx, id, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Modified)
	res, err = st.Parcels.Assign(ctx, id, a)
	require.NoError(t, err)
	assert.Zero(t, res.Matched)

	res, err = st.Parcels.Advance(ctx, id, model.DeliveryDelivered, now)
	require.NoError(t, err)
	assert.Zero(t, res.Matched)

	for _, to := range []model.DeliveryStatus{model.DeliveryInTransit, model.DeliveryDelivered} {
		res, err = st.Parcels.Advance(ctx, id, to, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Modified, to)
	}

	_, err = st.Parcels.Advance(ctx, id, model.DeliveryRiderAssigned, now)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	res, err = st.Parcels.Cashout(ctx, id, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Modified)
	res, err = st.Parcels.Cashout(ctx, id, now)
	require.NoError(t, err)
	assert.Zero(t, res.Matched)

	p, err := st.Parcels.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryDelivered, p.DeliveryStatus)
	assert.Equal(t, "r@x.com", p.AssignedRiderEmail)
	assert.Equal(t, model.CashoutCompleted, p.CashoutStatus)
	assert.NotNil(t, p.DeliveredAt)
	assert.Equal(t, "Docs", p.Extra["title"])
}

func TestLive_MalformedIDsMatchNothing(t *testing.T) {
	st := newLiveStore(t)
	ctx := context.Background()

	_, err := st.Parcels.Get(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, store.ErrNotFound)

	res, err := st.Parcels.Cashout(ctx, "not-an-object-id", time.Now())
	require.NoError(t, err)
	assert.Zero(t, res.Matched)
}

func TestLive_UniqueUserEmail(t *testing.T) {
	st := newLiveStore(t)
	ctx := context.Background()

	_, err := st.Users.Insert(ctx, &model.User{Email: "a@x.com", Role: model.RoleUser, CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = st.Users.Insert(ctx, &model.User{Email: "A@x.com", Role: model.RoleUser, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}
