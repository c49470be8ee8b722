package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"

	"supplyagent"
	"supplyagent/gateway"
	"supplyagent/inventory"
	"supplyagent/storage"
	"supplyagent/workflow"
)

// Usage: scan <product_id> <clinic_id> <count>
func main() {
	ctx := context.Background()

	if len(os.Args) < 4 {
		log.Fatalf("usage: %s <product_id> <clinic_id> <count>", os.Args[0])
	}
	productID, clinicID := os.Args[1], os.Args[2]
	count, err := strconv.Atoi(os.Args[3])
	if err != nil {
		log.Fatalf("invalid count %q: %s", os.Args[3], err)
	}

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

	product, clinic, err := lookup(catalog, productID, clinicID)
	if err != nil {
		slog.Error("SETUP: Unknown selection", "error", err)
		return
	}

	audit, cleanup, err := newInvocationLogger("scan")
	if err != nil {
		slog.Error("SETUP: Failed to create invocation logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush invocation log", "error", err)
		}
	}()

	caller, err := gateway.NewClient(gateway.ClientOpts{
		BaseEndpoint: gwConfig.BaseEndpoint,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		Audit:        audit,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create gateway client", "error", err)
		return
	}

	ledger := inventory.NewLedger(catalog)
	history := inventory.NewScanHistory(appConfig.HistoryLimit)
	pipeline := workflow.NewScanPipeline(caller, gwConfig.InventoryAgentID, ledger, history)

	record, err := pipeline.Submit(ctx, workflow.ScanRequest{
		Product: product,
		Clinic:  clinic,
		Count:   count,
	})
	if err != nil {
		slog.Error("RESULT: Scan failed", "reason", gateway.Reason(err))
		return
	}

	slog.Info("RESULT: Scan validated",
		"product", record.ProductName,
		"clinic", record.ClinicName,
		"count", record.CurrentCount,
		"status", record.Status,
		"warnings", record.Warnings,
	)
	supplyagent.Dump(record)
}

func lookup(catalog storage.Catalog, productID, clinicID string) (*supplyagent.Product, *supplyagent.Clinic, error) {
	var product *supplyagent.Product
	for i := range catalog.Products {
		if catalog.Products[i].ID == productID {
			product = &catalog.Products[i]
			break
		}
	}
	if product == nil {
		return nil, nil, fmt.Errorf("product %q not in catalog", productID)
	}

	var clinic *supplyagent.Clinic
	for i := range catalog.Clinics {
		if catalog.Clinics[i].ID == clinicID {
			clinic = &catalog.Clinics[i]
			break
		}
	}
	if clinic == nil {
		return nil, nil, fmt.Errorf("clinic %q not in catalog", clinicID)
	}
	return product, clinic, nil
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
