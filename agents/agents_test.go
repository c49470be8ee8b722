package agents_test

import (
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"supplyagent/agents"
)

func TestNewRegistry(t *testing.T) {
	registry, err := agents.NewRegistry("inv-1", "ord-1", "not-1")
	must.NoError(t, err)
	should.Len(t, registry.All(), 3)

	tests := []struct {
		id       string
		wantKind string
	}{
		{id: "inv-1", wantKind: agents.KindInventoryValidation},
		{id: "ord-1", wantKind: agents.KindOrderIntelligence},
		{id: "not-1", wantKind: agents.KindNotificationOrder},
	}
	for _, tt := range tests {
		desc, err := registry.Get(tt.id)
		must.NoError(t, err)
		should.Equal(t, tt.wantKind, desc.Kind)
		should.Equal(t, tt.id, desc.ID)
		should.NotNil(t, desc.InputSchema)
		should.NotNil(t, desc.ResultSchema)
	}
}

func TestNewRegistryMissingID(t *testing.T) {
	tests := []struct {
		name                     string
		inventory, order, notify string
	}{
		{name: "missing inventory", inventory: "", order: "ord-1", notify: "not-1"},
		{name: "missing order", inventory: "inv-1", order: "", notify: "not-1"},
		{name: "missing notification", inventory: "inv-1", order: "ord-1", notify: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agents.NewRegistry(tt.inventory, tt.order, tt.notify)
			should.Error(t, err)
		})
	}
}

func TestGetUnknownAgent(t *testing.T) {
	registry, err := agents.NewRegistry("inv-1", "ord-1", "not-1")
	must.NoError(t, err)

	_, err = registry.Get("unknown")
	should.Error(t, err)
}
