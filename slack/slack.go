// Package slack posts operational alerts to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"supplyagent"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// OrderConfirmationMessage formats a dispatch confirmation for the ops channel.
func OrderConfirmationMessage(result supplyagent.DispatchResult, totalCost float64, itemCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":package: Order %s submitted: %d item(s), estimated $%.2f.", result.OrderReference, itemCount, totalCost)
	if result.TotalEmailsSent > 0 {
		fmt.Fprintf(&b, " %d confirmation email(s) sent.", result.TotalEmailsSent)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, " %s", result.Message)
	}
	return b.String()
}

// CriticalStockMessage formats a critical-stock alert, one line per row.
func CriticalStockMessage(rows []supplyagent.InventoryItem) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":rotating_light: %d item(s) at critical stock:", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "\n- %s (%s) at %s: %d on hand, threshold %d",
			row.ProductName, row.SKU, row.ClinicName, row.CurrentCount, row.MinThreshold)
	}
	return b.String()
}
