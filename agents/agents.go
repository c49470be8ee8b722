// Package agents describes the three opaque decision services the client
// integrates with. Descriptors carry the documented request/result contract;
// the decision logic behind each agent is out of scope.
package agents

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	KindInventoryValidation = "inventory_validation"
	KindOrderIntelligence   = "order_intelligence"
	KindNotificationOrder   = "notification_order"
)

// Descriptor identifies one decision service and documents its wire contract.
// ResultSchema describes the nested result object; every field on the result
// side is optional for consumers.
type Descriptor struct {
	ID           string
	Kind         string
	Name         string
	Purpose      string
	SystemPrompt string
	InputSchema  *jsonschema.Schema
	ResultSchema *jsonschema.Schema
}

// Registry maps agent IDs to descriptors.
type Registry map[string]Descriptor

// NewRegistry wires the three fixed service descriptors to their deployment
// IDs.
func NewRegistry(inventoryID, orderID, notificationID string) (Registry, error) {
	for name, id := range map[string]string{
		"inventory validation": inventoryID,
		"order intelligence":   orderID,
		"notification":         notificationID,
	} {
		if id == "" {
			return nil, fmt.Errorf("missing %s agent id", name)
		}
	}

	return Registry{
		inventoryID:    inventoryValidation(inventoryID),
		orderID:        orderIntelligence(orderID),
		notificationID: notificationOrder(notificationID),
	}, nil
}

// Get retrieves a descriptor by agent ID.
func (r Registry) Get(id string) (Descriptor, error) {
	d, exists := r[id]
	if !exists {
		return Descriptor{}, fmt.Errorf("agent %q not found in registry", id)
	}
	return d, nil
}

// All returns every registered descriptor.
func (r Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r))
	for _, d := range r {
		out = append(out, d)
	}
	return out
}

func inventoryValidation(id string) Descriptor {
	min := 0.0
	return Descriptor{
		ID:      id,
		Kind:    KindInventoryValidation,
		Name:    "Inventory Update Agent",
		Purpose: "Validates and records scanned inventory counts",
		SystemPrompt: "You are an inventory validation agent for medical clinic supplies. " +
			"Given a reported stock count and its minimum threshold, decide the stock status " +
			"(green, yellow, red or critical), flag warnings, and echo the identifying fields back.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"product_id":    {Type: "string"},
				"product_name":  {Type: "string"},
				"clinic_id":     {Type: "string"},
				"clinic_name":   {Type: "string"},
				"current_count": {Type: "integer", Minimum: &min},
				"min_threshold": {Type: "integer", Minimum: &min},
			},
			Required: []string{"product_id", "clinic_id", "current_count"},
		},
		ResultSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"status":        {Type: "string", Enum: []any{"green", "yellow", "red", "critical"}},
				"warnings":      {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				"product_name":  {Type: "string"},
				"product_id":    {Type: "string"},
				"clinic_name":   {Type: "string"},
				"clinic_id":     {Type: "string"},
				"current_count": {Type: "integer", Minimum: &min},
				"timestamp":     {Type: "string"},
				"validated":     {Type: "boolean"},
				"message":       {Type: "string"},
			},
		},
	}
}

func orderIntelligence(id string) Descriptor {
	min := 0.0
	return Descriptor{
		ID:      id,
		Kind:    KindOrderIntelligence,
		Name:    "Order Intelligence Agent",
		Purpose: "Analyzes stock levels, generates order recommendations",
		SystemPrompt: "You are an order intelligence agent for a multi-clinic medical supply network. " +
			"Given a full inventory snapshot, propose what to reorder: per-item totals, a per-clinic " +
			"breakdown, a priority (critical, high or medium), an estimated unit cost and a short justification.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"context": {Type: "string"},
				"inventory_snapshot": {
					Type: "array",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"product_name":  {Type: "string"},
							"sku":           {Type: "string"},
							"clinic_name":   {Type: "string"},
							"current_count": {Type: "integer", Minimum: &min},
							"min_threshold": {Type: "integer", Minimum: &min},
							"status":        {Type: "string"},
						},
						Required: []string{"product_name", "sku", "clinic_name", "current_count", "min_threshold", "status"},
					},
				},
				"total_clinics":  {Type: "integer", Minimum: &min},
				"total_products": {Type: "integer", Minimum: &min},
			},
			Required: []string{"inventory_snapshot"},
		},
		ResultSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"recommendations": {
					Type: "array",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"item_name":             {Type: "string"},
							"sku":                   {Type: "string"},
							"total_quantity_needed": {Type: "integer", Minimum: &min},
							"breakdown_by_clinic": {
								Type: "array",
								Items: &jsonschema.Schema{
									Type: "object",
									Properties: map[string]*jsonschema.Schema{
										"clinic_name": {Type: "string"},
										"quantity":    {Type: "integer", Minimum: &min},
									},
								},
							},
							"priority":            {Type: "string", Enum: []any{"critical", "high", "medium"}},
							"estimated_unit_cost": {Type: "number", Minimum: &min},
							"justification":       {Type: "string"},
						},
					},
				},
				"summary": {
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"total_estimated_cost": {Type: "number", Minimum: &min},
						"clinics_affected":     {Type: "integer", Minimum: &min},
					},
				},
			},
		},
	}
}

func notificationOrder(id string) Descriptor {
	min := 0.0
	return Descriptor{
		ID:      id,
		Kind:    KindNotificationOrder,
		Name:    "Notification & Order Agent",
		Purpose: "Sends order confirmations and alerts via email",
		SystemPrompt: "You are a notification agent for a medical supply ordering system. " +
			"Given an approved order, assign an order reference and report which confirmation " +
			"emails were sent and their delivery status.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"context": {Type: "string"},
				"approved_items": {
					Type: "array",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"item_name":           {Type: "string"},
							"sku":                 {Type: "string"},
							"quantity":            {Type: "integer", Minimum: &min},
							"estimated_unit_cost": {Type: "number", Minimum: &min},
							"priority":            {Type: "string"},
						},
						Required: []string{"item_name", "sku", "quantity"},
					},
				},
				"recipient_email": {Type: "string"},
				"order_type":      {Type: "string"},
			},
			Required: []string{"approved_items", "recipient_email"},
		},
		ResultSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"order_reference": {Type: "string"},
				"emails_sent": {
					Type: "array",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"subject":   {Type: "string"},
							"recipient": {Type: "string"},
							"status":    {Type: "string"},
						},
					},
				},
				"total_emails_sent": {Type: "integer", Minimum: &min},
				"message":           {Type: "string"},
			},
		},
	}
}
