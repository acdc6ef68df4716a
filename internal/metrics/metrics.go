package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParcelsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastshift_parcels_created_total",
		Help: "Total number of parcels booked.",
	})

	RidersAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastshift_riders_assigned_total",
		Help: "Total number of parcels successfully assigned to a rider.",
	})

	ParcelTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fastshift_parcel_transitions_total",
		Help: "Total number of applied parcel delivery status transitions.",
	},
		[]string{"status"},
	)

	CashoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastshift_cashouts_total",
		Help: "Total number of parcels cashed out to riders.",
	})

	PaymentsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastshift_payments_recorded_total",
		Help: "Total number of payments recorded.",
	})

	TrackingEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastshift_tracking_events_total",
		Help: "Total number of tracking events appended.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fastshift_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fastshift_http_request_duration_seconds",
		Help:    "Latency of HTTP requests by route and status.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method", "route", "status"},
	)
)
