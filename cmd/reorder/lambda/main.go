package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"supplyagent"
	"supplyagent/agents"
	"supplyagent/gateway/bedrock"
	"supplyagent/inventory"
	"supplyagent/storage"
	"supplyagent/workflow"
)

type Params struct {
	RecipientEmail string `json:"recipient_email"`
}

type Results struct {
	OrderReference string  `json:"order_reference,omitempty"`
	ItemCount      int     `json:"item_count"`
	TotalCost      float64 `json:"total_cost"`
	Message        string  `json:"message,omitempty"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var modelConfig supplyagent.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var gwConfig supplyagent.GatewayConfig
		if err := envdecode.Decode(&gwConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var appConfig supplyagent.AppConfig
		if err := envdecode.Decode(&appConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		s3Bucket := os.Getenv("ARTIFACTS_S3_BUCKET")
		catalogKey := os.Getenv("ARTIFACTS_CATALOG_S3_KEY")
		if s3Bucket == "" || catalogKey == "" {
			return Results{}, fmt.Errorf("missing S3 config: ARTIFACTS_S3_BUCKET and ARTIFACTS_CATALOG_S3_KEY must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s3Client := s3.NewFromConfig(awsCfg)

		catalog, err := storage.LoadCatalog(ctx, storage.NewS3CatalogState(s3Client, s3Bucket, catalogKey))
		if err != nil {
			slog.Error("SETUP: Failed to load catalog from S3", "error", err)
			return Results{}, err
		}
		slog.Info("SETUP: Catalog loaded from S3",
			"clinics", len(catalog.Clinics),
			"products", len(catalog.Products),
			"rows", len(catalog.Inventory),
		)

		ledger := inventory.NewLedger(catalog)

		registry, err := agents.NewRegistry(gwConfig.InventoryAgentID, gwConfig.OrderAgentID, gwConfig.NotificationAgentID)
		if err != nil {
			slog.Error("SETUP: Failed to create agent registry", "error", err)
			return Results{}, err
		}

		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to create Bedrock client", "error", err)
			return Results{}, err
		}

		caller := bedrock.NewClient(brc, registry, bedrock.ClientOptions{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		})

		tracerProvider, meterProvider, otelShutdown, err := supplyagent.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		tracer := tracerProvider.Tracer(supplyagent.TracerNameOrders)
		meter := meterProvider.Meter(supplyagent.TracerNameOrders)

		inner := workflow.NewOrders(caller, gwConfig.OrderAgentID, gwConfig.NotificationAgentID, ledger, appConfig.OrderType)
		recipient := params.RecipientEmail
		if recipient == "" {
			recipient = appConfig.RecipientEmail
		}
		inner.SetRecipient(recipient)
		orders := workflow.NewInstrumentedOrders(inner, tracer, meter)

		summary, err := orders.Analyze(ctx)
		if err != nil {
			slog.Error("RESULT: Analysis failed", "error", err)
			return Results{}, err
		}
		if summary.ItemCount == 0 {
			return Results{Message: "nothing to reorder"}, nil
		}

		result, err := orders.Submit(ctx)
		if err != nil {
			slog.Error("RESULT: Dispatch failed", "error", err)
			return Results{}, err
		}

		return Results{
			OrderReference: result.OrderReference,
			ItemCount:      orders.ApprovedCount(),
			TotalCost:      orders.TotalCost(),
			Message:        result.Message,
		}, nil
	}

	lambda.Start(fn)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
