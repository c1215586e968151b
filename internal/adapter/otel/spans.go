package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "atelier"

// StartReconcileSpan starts a span for a section reconciliation.
func StartReconcileSpan(ctx context.Context, section string, desired int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "reconcile",
		trace.WithAttributes(
			attribute.String("section.key", section),
			attribute.Int("section.desired_items", desired),
		),
	)
}

// StartUploadSpan starts a span for a media upload.
func StartUploadSpan(ctx context.Context, name, contentType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "media.upload",
		trace.WithAttributes(
			attribute.String("media.name", name),
			attribute.String("media.content_type", contentType),
		),
	)
}
