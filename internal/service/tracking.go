package service

import (
	"context"
	"strings"

	"github.com/iliyamo/fastshift/internal/metrics"
	"github.com/iliyamo/fastshift/internal/model"
)

// TrackingService appends and reads tracking events.
type TrackingService struct {
	base
}

// Append stamps e with the current time and stores it.
func (s *TrackingService) Append(ctx context.Context, e *model.TrackingEvent) (string, error) {
	e.TrackingID = strings.TrimSpace(e.TrackingID)
	e.Status = strings.TrimSpace(e.Status)
	if e.TrackingID == "" || e.Status == "" {
		return "", badRequest("tracking_id and status are required")
	}
	e.Timestamp = s.now()
	id, err := s.st.Trackings.Append(ctx, e)
	if err != nil {
		return "", s.fail("tracking.append", "Failed to add tracking update", err)
	}
	metrics.TrackingEventsTotal.Inc()
	return id, nil
}

// List returns the events of trackingID oldest first.
func (s *TrackingService) List(ctx context.Context, trackingID string) ([]*model.TrackingEvent, error) {
	out, err := s.st.Trackings.List(ctx, trackingID)
	if err != nil {
		return nil, s.fail("tracking.list", "Failed to fetch tracking updates", err)
	}
	return out, nil
}
