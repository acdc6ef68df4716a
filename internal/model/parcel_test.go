package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from DeliveryStatus
		to   DeliveryStatus
		want bool
	}{
		{DeliveryNotCollected, DeliveryRiderAssigned, true},
		{DeliveryRiderAssigned, DeliveryInTransit, true},
		{DeliveryInTransit, DeliveryDelivered, true},
		{DeliveryInTransit, DeliveryServiceCenterDelivered, true},
		{DeliveryNotCollected, DeliveryInTransit, false},
		{DeliveryNotCollected, DeliveryDelivered, false},
		{DeliveryInTransit, DeliveryRiderAssigned, false},
		{DeliveryDelivered, DeliveryInTransit, false},
		{DeliveryDelivered, DeliveryServiceCenterDelivered, false},
		{DeliveryStatus("lost"), DeliveryRiderAssigned, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanAdvanceTo(tc.to))
		})
	}
}

func TestDeliveryStatus_PredecessorMatchesOrder(t *testing.T) {
	for s := range deliveryRank {
		prev, ok := s.Predecessor()
		if s == DeliveryNotCollected {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok, s)
		assert.True(t, prev.CanAdvanceTo(s), "%s -> %s", prev, s)
	}
}

func TestParcel_JSONKeepsUnknownKeys(t *testing.T) {
	in := `{"created_by":"a@x.com","title":"Books","weight":2.5,"receiver":{"name":"B"},"payment_status":"unpaid"}`

	var p Parcel
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Equal(t, "a@x.com", p.CreatedBy)
	assert.Equal(t, PaymentUnpaid, p.PaymentStatus)
	assert.Equal(t, "Books", p.Extra["title"])
	assert.NotContains(t, p.Extra, "created_by")

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "Books", doc["title"])
	assert.Equal(t, 2.5, doc["weight"])
	assert.Equal(t, "a@x.com", doc["created_by"])
}

func TestParcel_KnownFieldsWinOverExtra(t *testing.T) {
	p := Parcel{ID: "p1", DeliveryStatus: DeliveryInTransit, Extra: Extra{"delivery_status": "delivered"}}
	out, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "in_transit", doc["delivery_status"])
}

func TestDecodeClient_IgnoresServerStampedValues(t *testing.T) {
	var p Parcel
	require.NoError(t, json.Unmarshal([]byte(`{"created_by":"a@x.com","created_at":"2025-07-01 10:00:00","picked_at":17}`), &p))
	assert.True(t, p.CreatedAt.IsZero())
	assert.Nil(t, p.PickedAt)
	assert.NotContains(t, p.Extra, "created_at")

	var r Rider
	require.NoError(t, json.Unmarshal([]byte(`{"name":"R","created_at":1751364000000}`), &r))
	assert.Equal(t, "R", r.Name)
	assert.True(t, r.CreatedAt.IsZero())

	var e TrackingEvent
	require.NoError(t, json.Unmarshal([]byte(`{"tracking_id":"PCL-1","status":"hub","timestamp":"now","location":"Dhaka"}`), &e))
	assert.Equal(t, "hub", e.Status)
	assert.Equal(t, "Dhaka", e.Extra["location"])
	assert.NotContains(t, e.Extra, "timestamp")
}

func TestPayment_AmountIsJSONNumber(t *testing.T) {
	out, err := json.Marshal(Payment{ID: "pay1", Amount: decimal.RequireFromString("55.50")})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, 55.5, doc["amount"])
	assert.Equal(t, "pay1", doc["_id"])
}
