package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"supplyagent"
	"supplyagent/gateway"
	"supplyagent/inventory"
)

// ScanRequest is one manual or scanned count submission.
type ScanRequest struct {
	Product *supplyagent.Product
	Clinic  *supplyagent.Clinic
	Count   int
}

// ScanPipeline turns a reported count into a validated ledger update. It
// performs no partial writes: history and ledger are only touched after the
// validation round trip succeeds, so a failed submission can be retried
// verbatim.
type ScanPipeline struct {
	caller  supplyagent.AgentCaller
	agentID string
	ledger  *inventory.Ledger
	history *inventory.ScanHistory

	mu   sync.Mutex
	busy bool
}

func NewScanPipeline(caller supplyagent.AgentCaller, agentID string, ledger *inventory.Ledger, history *inventory.ScanHistory) *ScanPipeline {
	return &ScanPipeline{
		caller:  caller,
		agentID: agentID,
		ledger:  ledger,
		history: history,
	}
}

// Busy reports whether a submission is outstanding.
func (p *ScanPipeline) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Submit validates the selection, invokes the Inventory Validation Agent and
// commits the result: the record is prepended to the bounded history, and the
// matching ledger row — when one exists — is overwritten. A scan for a pair
// with no ledger row is recorded in history only.
func (p *ScanPipeline) Submit(ctx context.Context, req ScanRequest) (supplyagent.ScanRecord, error) {
	ctx, span := otel.Tracer(supplyagent.TracerNameScan).Start(ctx, "ScanPipeline.Submit")
	defer span.End()

	if req.Product == nil || req.Clinic == nil {
		return supplyagent.ScanRecord{}, &ValidationError{Reason: "select a product and clinic before submitting"}
	}
	if req.Count < 0 {
		req.Count = 0
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return supplyagent.ScanRecord{}, ErrScanInFlight
	}
	p.busy = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.busy = false
		p.mu.Unlock()
	}()

	payload := map[string]any{
		"product_id":    req.Product.ID,
		"product_name":  req.Product.Name,
		"clinic_id":     req.Clinic.ID,
		"clinic_name":   req.Clinic.Name,
		"current_count": req.Count,
		"min_threshold": req.Product.MinThreshold,
	}

	slog.Info("SCAN: Submitting count",
		"product_id", req.Product.ID,
		"clinic_id", req.Clinic.ID,
		"count", req.Count,
	)

	raw, err := p.caller.Invoke(ctx, payload, p.agentID)
	if err != nil {
		slog.Warn("SCAN: Validation failed, nothing committed", "error", err)
		return supplyagent.ScanRecord{}, err
	}

	// Single commit point: normalize, then history, then ledger.
	record := scanRecordFromResult(gateway.Result(raw), req)
	p.history.Add(record)

	if updated := p.ledger.CommitScan(record.ProductID, record.ClinicID, record.CurrentCount, record.Status, record.Timestamp); !updated {
		slog.Info("SCAN: No ledger row for pair, history only",
			"product_id", record.ProductID,
			"clinic_id", record.ClinicID,
		)
	}

	return record, nil
}

// scanRecordFromResult maps the raw validation result onto a ScanRecord,
// with server-supplied fields overriding the request where present.
func scanRecordFromResult(res gateway.Result, req ScanRequest) supplyagent.ScanRecord {
	now := time.Now()
	status := supplyagent.Severity(res.Str("status", string(supplyagent.SeverityGreen)))
	if !status.Known() {
		status = supplyagent.SeverityGreen
	}

	return supplyagent.ScanRecord{
		ID:           fmt.Sprintf("scan-%d", now.UnixNano()),
		ProductName:  res.Str("product_name", req.Product.Name),
		ProductID:    res.Str("product_id", req.Product.ID),
		ClinicName:   res.Str("clinic_name", req.Clinic.Name),
		ClinicID:     res.Str("clinic_id", req.Clinic.ID),
		CurrentCount: res.Int("current_count", req.Count),
		Status:       status,
		Timestamp:    res.Time("timestamp", now),
		Validated:    res.Bool("validated", true),
		Warnings:     res.StrList("warnings"),
	}
}
