// Package queue carries parcel lifecycle events over RabbitMQ. Events are
// informational: they are published best-effort to a non-durable exchange
// and nothing in the request path depends on their delivery.
package queue

import (
	"fmt"
	"strings"
	"time"
)

// Exchange is the topic exchange lifecycle events are published to.
const Exchange = "fastshift.parcels"

// Event types.
const (
	EventCreated   = "created"
	EventPaid      = "paid"
	EventAssigned  = "assigned"
	EventPickedUp  = "picked_up"
	EventDelivered = "delivered"
	EventCashedOut = "cashed_out"
	EventDeleted   = "deleted"
)

// ParcelEvent describes one change to a parcel.
type ParcelEvent struct {
	Type           string    `json:"type"`
	ParcelID       string    `json:"parcel_id"`
	DeliveryStatus string    `json:"delivery_status,omitempty"`
	RiderEmail     string    `json:"rider_email,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RoutingKey is "parcel.<type>".
func (e ParcelEvent) RoutingKey() string {
	return "parcel." + e.Type
}

// Line renders the event as a single log line.
func (e ParcelEvent) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] parcel %s | parcel_id=%s", e.OccurredAt.UTC().Format(time.RFC3339), e.Type, e.ParcelID)
	if e.DeliveryStatus != "" {
		fmt.Fprintf(&b, " | delivery_status=%s", e.DeliveryStatus)
	}
	if e.RiderEmail != "" {
		fmt.Fprintf(&b, " | rider=%s", e.RiderEmail)
	}
	if e.Actor != "" {
		fmt.Fprintf(&b, " | actor=%s", e.Actor)
	}
	if e.Amount != "" {
		fmt.Fprintf(&b, " | amount=%s", e.Amount)
	}
	return b.String()
}
