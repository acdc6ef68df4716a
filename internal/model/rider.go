package model

import (
	"encoding/json"
	"time"
)

// RiderStatus is the state of a rider application.
type RiderStatus string

const (
	RiderPending  RiderStatus = "pending"
	RiderActive   RiderStatus = "active"
	RiderRejected RiderStatus = "rejected"
)

// Valid reports whether s is a known rider status.
func (s RiderStatus) Valid() bool {
	switch s {
	case RiderPending, RiderActive, RiderRejected:
		return true
	}
	return false
}

// WorkStatus is the workload of an active rider.
type WorkStatus string

const (
	WorkAvailable  WorkStatus = "available"
	WorkInDelivery WorkStatus = "in_delivery"
)

// Rider is a delivery agent. Riders apply (pending), are activated or
// rejected by an admin, and flip to in_delivery when a parcel is assigned.
type Rider struct {
	ID         string      `json:"_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	District   string      `json:"district"`
	Status     RiderStatus `json:"status"`
	WorkStatus WorkStatus  `json:"work_status"`
	CreatedAt  time.Time   `json:"created_at"`
	Extra      Extra       `json:"-"` // region, phone, bike details...
}

var riderKeys = keySet("_id", "name", "email", "district", "status", "work_status", "created_at")

// riderStamped are set by the server; client values are ignored.
var riderStamped = keySet("created_at")

func (r Rider) MarshalJSON() ([]byte, error) {
	type alias Rider
	b, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, r.Extra)
}

func (r *Rider) UnmarshalJSON(data []byte) error {
	type alias Rider
	var a alias
	extra, err := decodeClient(data, riderKeys, riderStamped, &a)
	if err != nil {
		return err
	}
	*r = Rider(a)
	r.Extra = extra
	return nil
}
