package queue

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParcelEventLine(t *testing.T) {
	ev := ParcelEvent{
		Type:           EventAssigned,
		ParcelID:       "p1",
		DeliveryStatus: "rider_assigned",
		RiderEmail:     "r@x.com",
		OccurredAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	assert.Equal(t, "parcel.assigned", ev.RoutingKey())
	assert.Equal(t,
		"[2024-01-02T03:04:05Z] parcel assigned | parcel_id=p1 | delivery_status=rider_assigned | rider=r@x.com",
		ev.Line())
}

func TestConsumerHandle(t *testing.T) {
	var out bytes.Buffer
	c := &Consumer{Log: zap.NewNop(), Out: &out}

	body, err := json.Marshal(ParcelEvent{Type: EventPaid, ParcelID: "p9", Amount: "500", OccurredAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, c.Handle(body))
	assert.Contains(t, out.String(), "parcel paid | parcel_id=p9")
	assert.Contains(t, out.String(), "amount=500")

	assert.Error(t, c.Handle([]byte("{")))
}
