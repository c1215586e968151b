package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "atelier"

// Metrics holds all Atelier metric instruments.
type Metrics struct {
	SectionReads      metric.Int64Counter
	SectionCacheHits  metric.Int64Counter
	Reconciles        metric.Int64Counter
	ReconcileFailures metric.Int64Counter
	ReconcileDuration metric.Float64Histogram
	ItemsWritten      metric.Int64Counter
	MediaUploads      metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.SectionReads, err = meter.Int64Counter("atelier.section.reads",
		metric.WithDescription("Number of section reads"))
	if err != nil {
		return nil, err
	}

	m.SectionCacheHits, err = meter.Int64Counter("atelier.section.cache_hits",
		metric.WithDescription("Number of section reads served from cache"))
	if err != nil {
		return nil, err
	}

	m.Reconciles, err = meter.Int64Counter("atelier.reconcile.completed",
		metric.WithDescription("Number of section reconciliations completed"))
	if err != nil {
		return nil, err
	}

	m.ReconcileFailures, err = meter.Int64Counter("atelier.reconcile.failed",
		metric.WithDescription("Number of section reconciliations failed"))
	if err != nil {
		return nil, err
	}

	m.ReconcileDuration, err = meter.Float64Histogram("atelier.reconcile.duration_seconds",
		metric.WithDescription("Reconciliation duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.ItemsWritten, err = meter.Int64Counter("atelier.items.written",
		metric.WithDescription("Number of content items written by reconciliation"))
	if err != nil {
		return nil, err
	}

	m.MediaUploads, err = meter.Int64Counter("atelier.media.uploads",
		metric.WithDescription("Number of media uploads"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
