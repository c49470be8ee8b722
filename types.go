package supplyagent

import (
	"context"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AgentCaller submits a JSON-serializable payload to a decision service and
// returns the nested result object verbatim. Callers normalize fields
// individually; any classified failure comes back as a gateway error.
type AgentCaller interface {
	Invoke(ctx context.Context, payload any, agentID string) (map[string]any, error)
}

type Notifier interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// Severity is the stock status scale supplied by the Inventory Validation
// Agent. The core never derives a severity from counts; it only consumes and
// compares them.
type Severity string

const (
	SeverityGreen    Severity = "green"
	SeverityYellow   Severity = "yellow"
	SeverityRed      Severity = "red"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityGreen:    0,
	SeverityYellow:   1,
	SeverityRed:      2,
	SeverityCritical: 3,
}

// Rank returns the position of s on the ordered scale green < yellow < red <
// critical. Unknown values rank as green so a misbehaving agent can never
// escalate a rollup.
func (s Severity) Rank() int {
	return severityRank[s]
}

func (s Severity) Known() bool {
	_, ok := severityRank[s]
	return ok
}

// WorstSeverity returns the most severe status present, or green for an empty
// list.
func WorstSeverity(statuses []Severity) Severity {
	worst := SeverityGreen
	for _, s := range statuses {
		if s.Rank() > worst.Rank() {
			worst = s
		}
	}
	return worst
}

type Clinic struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	State   string `json:"state"`
}

type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	MinThreshold int    `json:"min_threshold"`
	MaxThreshold int    `json:"max_threshold"`
}

// InventoryItem is one ledger row. Exactly one row exists per
// product-per-clinic pairing.
type InventoryItem struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	ClinicID     string    `json:"clinic_id"`
	ClinicName   string    `json:"clinic_name"`
	CurrentCount int       `json:"current_count"`
	MinThreshold int       `json:"min_threshold"`
	Status       Severity  `json:"status"`
	LastUpdated  time.Time `json:"last_updated"`
}

// ScanRecord is the immutable audit entry produced by one validated count
// submission.
type ScanRecord struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"product_name"`
	ProductID    string    `json:"product_id"`
	ClinicName   string    `json:"clinic_name"`
	ClinicID     string    `json:"clinic_id"`
	CurrentCount int       `json:"current_count"`
	Status       Severity  `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Validated    bool      `json:"validated"`
	Warnings     []string  `json:"warnings,omitempty"`
}

type ClinicQuantity struct {
	ClinicName string `json:"clinic_name"`
	Quantity   int    `json:"quantity"`
}

// OrderRecommendation is one line item proposed by the Order Intelligence
// Agent. Approved and EditedQuantity are operator-owned; everything else is
// carried verbatim from the agent for display.
type OrderRecommendation struct {
	ItemName            string           `json:"item_name"`
	SKU                 string           `json:"sku"`
	TotalQuantityNeeded int              `json:"total_quantity_needed"`
	BreakdownByClinic   []ClinicQuantity `json:"breakdown_by_clinic"`
	Priority            string           `json:"priority"`
	EstimatedUnitCost   float64          `json:"estimated_unit_cost"`
	Justification       string           `json:"justification"`
	Approved            bool             `json:"approved"`
	EditedQuantity      int              `json:"edited_quantity"`
}

// Subtotal is the operator-edited quantity times the agent's cost estimate.
func (r OrderRecommendation) Subtotal() float64 {
	return float64(r.EditedQuantity) * r.EstimatedUnitCost
}

type EmailRecord struct {
	Subject   string `json:"subject"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

// DispatchResult is the Notification Agent's confirmation for one submitted
// order. It is display state only and is replaced on the next cycle.
type DispatchResult struct {
	OrderReference  string        `json:"order_reference"`
	EmailsSent      []EmailRecord `json:"emails_sent"`
	TotalEmailsSent int           `json:"total_emails_sent"`
	Message         string        `json:"message"`
}
