// Package metrics exposes Prometheus instrumentation for the resolution path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal counts resolution attempts by outcome
	// (redirect, view_payload, not_found, expired, quota_exceeded,
	// invalid_target).
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrshort_resolutions_total",
		Help: "Total short-code resolution attempts by outcome",
	}, []string{"outcome"})

	// LinksCreatedTotal counts created links by kind and caller tier.
	LinksCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrshort_links_created_total",
		Help: "Total links created by kind and tier",
	}, []string{"kind", "tier"})
)

// RecordResolution increments the outcome counter for one resolution attempt.
func RecordResolution(outcome string) {
	ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordLinkCreated increments the creation counter.
func RecordLinkCreated(kind, tier string) {
	LinksCreatedTotal.WithLabelValues(kind, tier).Inc()
}
