package model

import (
	"encoding/json"
	"time"
)

// PaymentStatus is the payment state of a parcel.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// DeliveryStatus is the delivery state of a parcel. Statuses only move
// forward: not_collected -> rider_assigned -> in_transit -> delivered or
// service_center_delivered.
type DeliveryStatus string

const (
	DeliveryNotCollected           DeliveryStatus = "not_collected"
	DeliveryRiderAssigned          DeliveryStatus = "rider_assigned"
	DeliveryInTransit              DeliveryStatus = "in_transit"
	DeliveryDelivered              DeliveryStatus = "delivered"
	DeliveryServiceCenterDelivered DeliveryStatus = "service_center_delivered"
)

// CashoutStatus records whether the rider has been paid out for a parcel.
type CashoutStatus string

const (
	CashoutPending   CashoutStatus = "not_cashed_out"
	CashoutCompleted CashoutStatus = "cashed_out"
)

var deliveryRank = map[DeliveryStatus]int{
	DeliveryNotCollected:           0,
	DeliveryRiderAssigned:          1,
	DeliveryInTransit:              2,
	DeliveryDelivered:              3,
	DeliveryServiceCenterDelivered: 3,
}

// Valid reports whether s is a known delivery status.
func (s DeliveryStatus) Valid() bool {
	_, ok := deliveryRank[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryServiceCenterDelivered
}

// CanAdvanceTo reports whether next is the immediate successor of s.
func (s DeliveryStatus) CanAdvanceTo(next DeliveryStatus) bool {
	from, ok := deliveryRank[s]
	if !ok {
		return false
	}
	to, ok := deliveryRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Predecessor returns the only status a parcel may hold right before s.
// The first status has no predecessor.
func (s DeliveryStatus) Predecessor() (DeliveryStatus, bool) {
	switch s {
	case DeliveryRiderAssigned:
		return DeliveryNotCollected, true
	case DeliveryInTransit:
		return DeliveryRiderAssigned, true
	case DeliveryDelivered, DeliveryServiceCenterDelivered:
		return DeliveryInTransit, true
	}
	return "", false
}

// TimestampField names the parcel timestamp stamped when a parcel enters s.
func (s DeliveryStatus) TimestampField() string {
	switch s {
	case DeliveryRiderAssigned:
		return "assigned_at"
	case DeliveryInTransit:
		return "picked_at"
	case DeliveryDelivered, DeliveryServiceCenterDelivered:
		return "delivered_at"
	}
	return ""
}

// ActiveDeliveryStatuses are the statuses of a rider's open tasks.
var ActiveDeliveryStatuses = []DeliveryStatus{DeliveryRiderAssigned, DeliveryInTransit}

// CompletedDeliveryStatuses are the statuses of a rider's finished tasks.
var CompletedDeliveryStatuses = []DeliveryStatus{DeliveryDelivered, DeliveryServiceCenterDelivered}

// Parcel is a shipment tracked through payment and delivery states.
//
// Fields:
//
//	ID                 – opaque identifier generated by the store.
//	CreatedBy          – email of the user who booked the parcel.
//	TrackingID         – public tracking code used by tracking events.
//	PaymentStatus      – unpaid until a payment is recorded.
//	DeliveryStatus     – position in the delivery state machine.
//	AssignedRider*     – set together with DeliveryRiderAssigned.
//	CashoutStatus      – rider payout state.
//	CreatedAt ... CashedOutAt – timestamps of each transition.
//	Extra              – any other client-supplied key (title, weight, sender/receiver details, cost).
type Parcel struct {
	ID                 string         `json:"_id"`
	CreatedBy          string         `json:"created_by"`
	TrackingID         string         `json:"tracking_id,omitempty"`
	PaymentStatus      PaymentStatus  `json:"payment_status"`
	DeliveryStatus     DeliveryStatus `json:"delivery_status"`
	AssignedRiderID    string         `json:"assigned_rider_id,omitempty"`
	AssignedRiderEmail string         `json:"assigned_rider_email,omitempty"`
	AssignedRiderName  string         `json:"assigned_rider_name,omitempty"`
	CashoutStatus      CashoutStatus  `json:"cashout_status"`
	CreatedAt          time.Time      `json:"created_at"`
	AssignedAt         *time.Time     `json:"assigned_at,omitempty"`
	PickedAt           *time.Time     `json:"picked_at,omitempty"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`
	CashedOutAt        *time.Time     `json:"cashed_out_at,omitempty"`
	Extra              Extra          `json:"-"`
}

var parcelKeys = keySet("_id", "created_by", "tracking_id", "payment_status", "delivery_status",
	"assigned_rider_id", "assigned_rider_email", "assigned_rider_name", "cashout_status",
	"created_at", "assigned_at", "picked_at", "delivered_at", "cashed_out_at")

// parcelStamped are set by the server; client values are ignored.
var parcelStamped = keySet("created_at", "assigned_at", "picked_at", "delivered_at", "cashed_out_at")

func (p Parcel) MarshalJSON() ([]byte, error) {
	type alias Parcel
	b, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, p.Extra)
}

func (p *Parcel) UnmarshalJSON(data []byte) error {
	type alias Parcel
	var a alias
	extra, err := decodeClient(data, parcelKeys, parcelStamped, &a)
	if err != nil {
		return err
	}
	*p = Parcel(a)
	p.Extra = extra
	return nil
}

// Assignment is the rider data written onto a parcel when it is assigned.
type Assignment struct {
	RiderID    string
	RiderName  string
	RiderEmail string
	At         time.Time
}

// StatusCount is one row of the delivery status aggregate.
type StatusCount struct {
	Status DeliveryStatus `json:"status"`
	Count  int64          `json:"count"`
}
