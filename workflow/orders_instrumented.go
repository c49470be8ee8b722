package workflow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"supplyagent"
)

// InstrumentedOrders is an instrumented version of the Orders workflow with
// comprehensive observability metrics.
type InstrumentedOrders struct {
	*Orders
	tracer trace.Tracer
	meter  metric.Meter
}

// NewInstrumentedOrders wraps an Orders workflow with tracing and metrics.
func NewInstrumentedOrders(orders *Orders, tracer trace.Tracer, meter metric.Meter) *InstrumentedOrders {
	return &InstrumentedOrders{
		Orders: orders,
		tracer: tracer,
		meter:  meter,
	}
}

// Analyze executes the analysis with full instrumentation.
func (o *InstrumentedOrders) Analyze(ctx context.Context) (AnalysisSummary, error) {
	ctx, span := o.tracer.Start(ctx, "InstrumentedOrders.Analyze")
	defer span.End()

	analysesCounter, _ := o.meter.Int64Counter("order_analyses_total",
		metric.WithDescription("Total number of order analyses started"))
	analysesFailedCounter, _ := o.meter.Int64Counter("order_analyses_failed_total",
		metric.WithDescription("Total number of order analyses that failed"))
	analysisDurationHist, _ := o.meter.Float64Histogram("order_analysis_duration_seconds",
		metric.WithDescription("Duration of order analyses in seconds"))
	recommendationsGauge, _ := o.meter.Int64Gauge("order_recommendations_count",
		metric.WithDescription("Number of recommendations in the current review set"))
	estimatedCostGauge, _ := o.meter.Float64Gauge("order_estimated_total_cost",
		metric.WithDescription("Estimated total cost of the current review set"))

	analysesCounter.Add(ctx, 1)

	start := time.Now()
	summary, err := o.Orders.Analyze(ctx)
	analysisDurationHist.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		analysesFailedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "Analysis failed")
		span.RecordError(err)
		return AnalysisSummary{}, err
	}

	recommendationsGauge.Record(ctx, int64(summary.ItemCount))
	estimatedCostGauge.Record(ctx, summary.TotalEstimatedCost)

	span.AddEvent("Analysis complete", trace.WithAttributes(
		attribute.Int("item_count", summary.ItemCount),
		attribute.Float64("total_estimated_cost", summary.TotalEstimatedCost),
		attribute.Int("clinics_affected", summary.ClinicsAffected),
	))
	return summary, nil
}

// Submit dispatches the approved subset with full instrumentation.
func (o *InstrumentedOrders) Submit(ctx context.Context) (supplyagent.DispatchResult, error) {
	ctx, span := o.tracer.Start(ctx, "InstrumentedOrders.Submit")
	defer span.End()

	dispatchesCounter, _ := o.meter.Int64Counter("order_dispatches_total",
		metric.WithDescription("Total number of order dispatches started"))
	dispatchesFailedCounter, _ := o.meter.Int64Counter("order_dispatches_failed_total",
		metric.WithDescription("Total number of order dispatches that failed"))
	dispatchDurationHist, _ := o.meter.Float64Histogram("order_dispatch_duration_seconds",
		metric.WithDescription("Duration of order dispatches in seconds"))
	approvedItemsGauge, _ := o.meter.Int64Gauge("order_approved_items_count",
		metric.WithDescription("Number of approved items in the dispatched order"))
	approvedCostGauge, _ := o.meter.Float64Gauge("order_approved_total_cost",
		metric.WithDescription("Total cost of approved items in the dispatched order"))
	emailsSentCounter, _ := o.meter.Int64Counter("order_emails_sent_total",
		metric.WithDescription("Total number of confirmation emails reported sent"))

	dispatchesCounter.Add(ctx, 1)
	approvedItemsGauge.Record(ctx, int64(o.ApprovedCount()))
	approvedCostGauge.Record(ctx, o.TotalCost())

	start := time.Now()
	result, err := o.Orders.Submit(ctx)
	dispatchDurationHist.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		errType := "agent_call_failed"
		if IsValidation(err) {
			errType = "validation_failed"
		}
		dispatchesFailedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error_type", errType),
		))
		span.SetStatus(codes.Error, "Dispatch failed")
		span.RecordError(err)
		return supplyagent.DispatchResult{}, err
	}

	emailsSentCounter.Add(ctx, int64(result.TotalEmailsSent))
	span.AddEvent("Dispatch confirmed", trace.WithAttributes(
		attribute.String("order_reference", result.OrderReference),
		attribute.Int("emails_sent", result.TotalEmailsSent),
	))
	return result, nil
}
