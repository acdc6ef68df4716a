package model

import (
	"encoding/json"
	"time"
)

// TrackingEvent is an immutable status record for a tracking id. Events of
// one tracking id are read oldest first.
type TrackingEvent struct {
	ID         string    `json:"_id"`
	TrackingID string    `json:"tracking_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Extra      Extra     `json:"-"`
}

var trackingKeys = keySet("_id", "tracking_id", "status", "timestamp")

// trackingStamped are set by the server; client values are ignored.
var trackingStamped = keySet("timestamp")

func (e TrackingEvent) MarshalJSON() ([]byte, error) {
	type alias TrackingEvent
	b, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, e.Extra)
}

func (e *TrackingEvent) UnmarshalJSON(data []byte) error {
	type alias TrackingEvent
	var a alias
	extra, err := decodeClient(data, trackingKeys, trackingStamped, &a)
	if err != nil {
		return err
	}
	*e = TrackingEvent(a)
	e.Extra = extra
	return nil
}
