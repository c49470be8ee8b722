package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"

	"supplyagent"
	"supplyagent/gateway"
	"supplyagent/inventory"
)

// Phase is the explicit state of the order recommendation workflow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnalyzing
	PhaseReviewing
	PhaseSubmitting
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseReviewing:
		return "reviewing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// AnalysisSummary carries the agent's own totals for the status message.
type AnalysisSummary struct {
	ItemCount          int
	TotalEstimatedCost float64
	ClinicsAffected    int
}

// Orders is the recommendation review state machine:
//
//	Idle → Analyzing → Reviewing → Submitting → Confirmed
//
// An analysis failure falls back to Idle; a submission failure falls back to
// Reviewing with the review set intact. Every commit happens at the single
// point after its agent call returns; the review set is never merged with a
// previous one and never mutated while a call is outstanding.
type Orders struct {
	caller        supplyagent.AgentCaller
	orderAgentID  string
	notifyAgentID string
	ledger        *inventory.Ledger
	orderType     string

	mu        sync.Mutex
	phase     Phase
	recs      []supplyagent.OrderRecommendation
	dispatch  *supplyagent.DispatchResult
	recipient string
}

func NewOrders(caller supplyagent.AgentCaller, orderAgentID, notifyAgentID string, ledger *inventory.Ledger, orderType string) *Orders {
	if orderType == "" {
		orderType = "purchase_order"
	}
	return &Orders{
		caller:        caller,
		orderAgentID:  orderAgentID,
		notifyAgentID: notifyAgentID,
		ledger:        ledger,
		orderType:     orderType,
	}
}

func (o *Orders) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orders) SetRecipient(email string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recipient = email
}

func (o *Orders) Recipient() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.recipient
}

// Recommendations returns a copy of the current review set.
func (o *Orders) Recommendations() []supplyagent.OrderRecommendation {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]supplyagent.OrderRecommendation, len(o.recs))
	copy(out, o.recs)
	return out
}

// DispatchResult returns the latest confirmation, if any.
func (o *Orders) DispatchResult() *supplyagent.DispatchResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.dispatch == nil {
		return nil
	}
	cp := *o.dispatch
	return &cp
}

// Analyze snapshots the ledger, invokes the Order Intelligence Agent and
// replaces the review set wholesale with the normalized recommendations, each
// seeded approved with its proposed quantity. While an analysis or submission
// is outstanding the trigger is unavailable. On failure the prior review set
// is left untouched and the workflow returns to Idle.
func (o *Orders) Analyze(ctx context.Context) (AnalysisSummary, error) {
	ctx, span := otel.Tracer(supplyagent.TracerNameOrders).Start(ctx, "Orders.Analyze")
	defer span.End()

	o.mu.Lock()
	switch o.phase {
	case PhaseAnalyzing:
		o.mu.Unlock()
		return AnalysisSummary{}, ErrAnalysisInFlight
	case PhaseSubmitting:
		o.mu.Unlock()
		return AnalysisSummary{}, ErrSubmissionInFlight
	}
	o.phase = PhaseAnalyzing
	o.mu.Unlock()

	snapshot := o.ledger.Snapshot()
	stats := o.ledger.Stats()
	payload := map[string]any{
		"context":            "reorder_analysis",
		"inventory_snapshot": snapshot,
		"total_clinics":      stats.TotalClinics,
		"total_products":     stats.TotalRows,
	}

	slog.Info("ORDERS: Starting analysis", "rows", len(snapshot), "clinics", stats.TotalClinics)

	raw, err := o.caller.Invoke(ctx, payload, o.orderAgentID)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.phase = PhaseIdle
		slog.Warn("ORDERS: Analysis failed, review set untouched", "error", err)
		return AnalysisSummary{}, err
	}

	res := gateway.Result(raw)
	o.recs = recommendationsFromResult(res)
	o.phase = PhaseReviewing

	summary := res.Map("summary")
	out := AnalysisSummary{
		ItemCount:          len(o.recs),
		TotalEstimatedCost: summary.Float("total_estimated_cost", 0),
		ClinicsAffected:    summary.Int("clinics_affected", 0),
	}

	slog.Info("ORDERS: Analysis complete",
		"items", out.ItemCount,
		"estimated_cost", out.TotalEstimatedCost,
		"clinics_affected", out.ClinicsAffected,
	)
	return out, nil
}

// ToggleApproved flips the operator approval on one item.
func (o *Orders) ToggleApproved(index int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editable(index); err != nil {
		return err
	}
	o.recs[index].Approved = !o.recs[index].Approved
	return nil
}

// SetQuantity sets the edited quantity on one item. Values below zero are
// clamped to zero, never rejected.
func (o *Orders) SetQuantity(index, quantity int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editable(index); err != nil {
		return err
	}
	if quantity < 0 {
		quantity = 0
	}
	o.recs[index].EditedQuantity = quantity
	return nil
}

// Remove deletes one item from the review set for good; it does not merely
// unapprove it.
func (o *Orders) Remove(index int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editable(index); err != nil {
		return err
	}
	o.recs = append(o.recs[:index], o.recs[index+1:]...)
	return nil
}

// DismissAll clears the review set and returns the workflow to Idle.
func (o *Orders) DismissAll() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.recs = nil
	o.phase = PhaseIdle
}

func (o *Orders) editable(index int) error {
	if o.phase != PhaseReviewing && o.phase != PhaseConfirmed {
		return ErrNoActiveReview
	}
	if index < 0 || index >= len(o.recs) {
		return &ValidationError{Reason: "no such recommendation"}
	}
	return nil
}

// ApprovedCount returns how many items carry operator approval.
func (o *Orders) ApprovedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.approvedCountLocked()
}

func (o *Orders) approvedCountLocked() int {
	n := 0
	for _, r := range o.recs {
		if r.Approved {
			n++
		}
	}
	return n
}

// TotalCost is the sum of edited_quantity × estimated_unit_cost over approved
// items only, recomputed from current state on every call.
func (o *Orders) TotalCost() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	total := 0.0
	for _, r := range o.recs {
		if r.Approved {
			total += r.Subtotal()
		}
	}
	return total
}

// Submit dispatches the approved subset — each item carrying its edited
// quantity — to the Notification Agent. It refuses, without any call, unless
// at least one item is approved and the recipient address is non-blank. On
// success the confirmation replaces any prior one and the review set stays
// editable for resubmission; on failure the workflow falls back to Reviewing
// with nothing changed.
func (o *Orders) Submit(ctx context.Context) (supplyagent.DispatchResult, error) {
	ctx, span := otel.Tracer(supplyagent.TracerNameOrders).Start(ctx, "Orders.Submit")
	defer span.End()

	o.mu.Lock()
	switch o.phase {
	case PhaseSubmitting:
		o.mu.Unlock()
		return supplyagent.DispatchResult{}, ErrSubmissionInFlight
	case PhaseAnalyzing:
		o.mu.Unlock()
		return supplyagent.DispatchResult{}, ErrAnalysisInFlight
	}

	if o.approvedCountLocked() == 0 {
		o.mu.Unlock()
		return supplyagent.DispatchResult{}, &ValidationError{Reason: "no items approved for ordering"}
	}
	if strings.TrimSpace(o.recipient) == "" {
		o.mu.Unlock()
		return supplyagent.DispatchResult{}, &ValidationError{Reason: "a recipient email address is required"}
	}

	approved := make([]map[string]any, 0, len(o.recs))
	for _, r := range o.recs {
		if !r.Approved {
			continue
		}
		approved = append(approved, map[string]any{
			"item_name":           r.ItemName,
			"sku":                 r.SKU,
			"quantity":            r.EditedQuantity,
			"estimated_unit_cost": r.EstimatedUnitCost,
			"priority":            r.Priority,
		})
	}
	payload := map[string]any{
		"context":         "order_dispatch",
		"approved_items":  approved,
		"recipient_email": o.recipient,
		"order_type":      o.orderType,
	}
	o.phase = PhaseSubmitting
	o.mu.Unlock()

	slog.Info("ORDERS: Dispatching approved order", "items", len(approved))

	raw, err := o.caller.Invoke(ctx, payload, o.notifyAgentID)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.phase = PhaseReviewing
		slog.Warn("ORDERS: Dispatch failed, returning to review", "error", err)
		return supplyagent.DispatchResult{}, err
	}

	result := dispatchFromResult(gateway.Result(raw))
	o.dispatch = &result
	o.phase = PhaseConfirmed

	slog.Info("ORDERS: Dispatch confirmed",
		"order_reference", result.OrderReference,
		"emails_sent", len(result.EmailsSent),
	)
	return result, nil
}

// recommendationsFromResult normalizes the agent's list field-by-field,
// defaulting to an empty set when absent or malformed. Each item arrives
// approved with its proposed quantity as the starting edit.
func recommendationsFromResult(res gateway.Result) []supplyagent.OrderRecommendation {
	raw := res.List("recommendations")
	out := make([]supplyagent.OrderRecommendation, 0, len(raw))
	for _, r := range raw {
		total := r.Int("total_quantity_needed", 0)
		breakdownRaw := r.List("breakdown_by_clinic")
		breakdown := make([]supplyagent.ClinicQuantity, 0, len(breakdownRaw))
		for _, b := range breakdownRaw {
			breakdown = append(breakdown, supplyagent.ClinicQuantity{
				ClinicName: b.Str("clinic_name", ""),
				Quantity:   b.Int("quantity", 0),
			})
		}

		out = append(out, supplyagent.OrderRecommendation{
			ItemName:            r.Str("item_name", ""),
			SKU:                 r.Str("sku", ""),
			TotalQuantityNeeded: total,
			BreakdownByClinic:   breakdown,
			Priority:            r.Str("priority", "medium"),
			EstimatedUnitCost:   r.Float("estimated_unit_cost", 0),
			Justification:       r.Str("justification", ""),
			Approved:            true,
			EditedQuantity:      total,
		})
	}
	return out
}

func dispatchFromResult(res gateway.Result) supplyagent.DispatchResult {
	emailsRaw := res.List("emails_sent")
	emails := make([]supplyagent.EmailRecord, 0, len(emailsRaw))
	for _, e := range emailsRaw {
		emails = append(emails, supplyagent.EmailRecord{
			Subject:   e.Str("subject", ""),
			Recipient: e.Str("recipient", ""),
			Status:    e.Str("status", ""),
		})
	}

	return supplyagent.DispatchResult{
		OrderReference:  res.Str("order_reference", ""),
		EmailsSent:      emails,
		TotalEmailsSent: res.Int("total_emails_sent", len(emails)),
		Message:         res.Str("message", ""),
	}
}
