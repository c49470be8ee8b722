package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"supplyagent"
	"supplyagent/gateway"
	"supplyagent/inventory"
	"supplyagent/slack"
	"supplyagent/storage"
	"supplyagent/workflow"
)

func main() {
	ctx := context.Background()

	var gwConfig supplyagent.GatewayConfig
	if err := envdecode.Decode(&gwConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var appConfig supplyagent.AppConfig
	if err := envdecode.Decode(&appConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	catalog, err := storage.LoadCatalog(ctx, storage.NewFileCatalogState(appConfig.CatalogPath))
	if err != nil {
		slog.Error("SETUP: Failed to load catalog", "error", err, "path", appConfig.CatalogPath)
		return
	}
	slog.Info("SETUP: Catalog loaded",
		"clinics", len(catalog.Clinics),
		"products", len(catalog.Products),
		"rows", len(catalog.Inventory),
	)

	ledger := inventory.NewLedger(catalog)

	audit, cleanup, err := newInvocationLogger("reorder-instrumented")
	if err != nil {
		slog.Error("SETUP: Failed to create invocation logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush invocation log", "error", err)
		}
	}()

	tracerProvider, meterProvider, otelShutdown, err := supplyagent.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	caller, err := gateway.NewClient(gateway.ClientOpts{
		BaseEndpoint: gwConfig.BaseEndpoint,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		Audit:        audit,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create gateway client", "error", err)
		return
	}

	tracer := tracerProvider.Tracer(supplyagent.TracerNameOrders)
	meter := meterProvider.Meter(supplyagent.TracerNameOrders)

	stats := ledger.Stats()
	ctx, span := tracer.Start(ctx, "reorder-cycle", trace.WithAttributes(
		attribute.Int("ledger.rows", stats.TotalRows),
		attribute.Int("ledger.clinics", stats.TotalClinics),
		attribute.Int("ledger.below_threshold", stats.BelowThreshold),
	))
	defer span.End()

	inner := workflow.NewOrders(caller, gwConfig.OrderAgentID, gwConfig.NotificationAgentID, ledger, appConfig.OrderType)
	inner.SetRecipient(appConfig.RecipientEmail)
	orders := workflow.NewInstrumentedOrders(inner, tracer, meter)

	summary, err := orders.Analyze(ctx)
	if err != nil {
		slog.Error("RESULT: Analysis failed", "reason", gateway.Reason(err))
		return
	}
	if summary.ItemCount == 0 {
		slog.Info("RESULT: Nothing to reorder")
		return
	}

	result, err := orders.Submit(ctx)
	if err != nil {
		slog.Error("RESULT: Dispatch failed", "reason", gateway.Reason(err))
		return
	}

	slog.Info("RESULT: Order submitted",
		"order_reference", result.OrderReference,
		"items", orders.ApprovedCount(),
		"total_cost", orders.TotalCost(),
	)

	if appConfig.SlackWebhook != "" {
		slackClient := slack.NewClient(appConfig.SlackWebhook, http.DefaultClient)
		msg := slack.OrderConfirmationMessage(result, orders.TotalCost(), orders.ApprovedCount())
		if err := slackClient.PostMessage(ctx, appConfig.SlackChannel, msg); err != nil {
			slog.Error("Failed to post confirmation to Slack", "error", err)
		}
	}
}

func newInvocationLogger(agent string) (supplyagent.InvocationLogger, func() error, error) {
	logFilePath := supplyagent.NewInvocationLogFilePath(agent)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := supplyagent.NewFileInvocationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
