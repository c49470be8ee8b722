package supplyagent

type GatewayConfig struct {
	BaseEndpoint        string `env:"AGENT_BASE_ENDPOINT,default=http://localhost:8787"`
	InventoryAgentID    string `env:"INVENTORY_AGENT_ID,required"`
	OrderAgentID        string `env:"ORDER_AGENT_ID,required"`
	NotificationAgentID string `env:"NOTIFICATION_AGENT_ID,required"`
}

type AppConfig struct {
	CatalogPath    string `env:"CATALOG_PATH,default=artifacts/catalog.json"`
	RecipientEmail string `env:"RECIPIENT_EMAIL,default="`
	OrderType      string `env:"ORDER_TYPE,default=purchase_order"`
	PageSize       int    `env:"PAGE_SIZE,default=8"`
	HistoryLimit   int    `env:"SCAN_HISTORY_LIMIT,default=5"`
	SlackChannel   string `env:"SLACK_ALERT_CHANNEL,default="`
	SlackWebhook   string `env:"SLACK_WEBHOOK_URL,default="`
}

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}
