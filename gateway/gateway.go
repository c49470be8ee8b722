package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"supplyagent"
)

// envelope is the fixed wire contract every decision service answers with.
type envelope struct {
	Success  bool    `json:"success"`
	Response *struct {
		Result map[string]any `json:"result"`
	} `json:"response,omitempty"`
	Error string `json:"error,omitempty"`
}

// wireRequest carries the caller's payload to a decision service.
type wireRequest struct {
	AgentID string          `json:"agent_id"`
	Message json.RawMessage `json:"message"`
}

const defaultRejectedMessage = "agent declined the request"

// Client invokes decision services over HTTP. It performs exactly one round
// trip per Invoke and classifies failures in a fixed interception order:
// redirect, 404+document, 404, 5xx, envelope rejection. Retry policy, if
// any, belongs to the caller.
type Client struct {
	baseEndpoint string
	httpClient   supplyagent.HTTPClient
	display      DisplaySink
	audit        supplyagent.InvocationLogger
}

type ClientOpts struct {
	BaseEndpoint string
	HTTPClient   supplyagent.HTTPClient
	Display      DisplaySink                  // defaults to LogSink
	Audit        supplyagent.InvocationLogger // defaults to NoOp
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.BaseEndpoint) == "" {
		return nil, fmt.Errorf("invalid base endpoint")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if opts.Display == nil {
		opts.Display = LogSink{}
	}
	if opts.Audit == nil {
		opts.Audit = supplyagent.NewNoOpInvocationLogger()
	}
	return &Client{
		baseEndpoint: strings.TrimRight(opts.BaseEndpoint, "/"),
		httpClient:   opts.HTTPClient,
		display:      opts.Display,
		audit:        opts.Audit,
	}, nil
}

// Invoke submits payload to the agent identified by agentID and returns the
// nested result object verbatim for the caller to normalize field-by-field.
func (c *Client) Invoke(ctx context.Context, payload any, agentID string) (map[string]any, error) {
	ctx, span := otel.Tracer(supplyagent.TracerNameGateway).Start(ctx, "Client.Invoke")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	result, err := c.invoke(ctx, payload, agentID)
	c.logInvocation(agentID, payload, result, err)
	return result, err
}

func (c *Client) invoke(ctx context.Context, payload any, agentID string) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent payload: %w", err)
	}

	reqBytes, err := json.Marshal(wireRequest{AgentID: agentID, Message: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent request: %w", err)
	}

	url := c.baseEndpoint + "/api/agents/" + agentID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Info("GATEWAY: Invoking agent", "agent_id", agentID, "payload_bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimedOutError{Agent: agentID}
		}
		return nil, fmt.Errorf("cannot reach agent host: %w", err)
	}
	defer resp.Body.Close()

	// 1) A followed redirect means the call landed somewhere other than the
	// agent surface. Re-point the display and bail out.
	if resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.String() != url {
		target := resp.Request.URL.String()
		c.display.RedirectTo(target)
		slog.Warn("GATEWAY: Request redirected away", "agent_id", agentID, "target", target)
		return nil, &RedirectError{Location: target}
	}

	// 2 & 3) Not found: a document body replaces the display; otherwise the
	// endpoint itself is missing.
	if resp.StatusCode == http.StatusNotFound {
		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			doc, _ := io.ReadAll(resp.Body)
			c.display.ReplaceDocument(doc)
			return nil, &FallbackPageError{Body: doc}
		}
		return nil, ErrEndpointMissing
	}

	// 4) Server fault.
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &ServiceUnavailableError{Code: resp.StatusCode}
	}

	// 5) Decision envelope. A malformed envelope counts as a rejection; the
	// agent's own error text wins when present.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		slog.Warn("GATEWAY: Malformed decision envelope", "agent_id", agentID, "err", err, "body_len", len(raw))
		return nil, &RejectedError{Message: defaultRejectedMessage}
	}
	if !env.Success {
		msg := env.Error
		if strings.TrimSpace(msg) == "" {
			msg = defaultRejectedMessage
		}
		return nil, &RejectedError{Message: msg}
	}

	// 6) Hand the nested result back verbatim. Absence is never fatal.
	if env.Response == nil || env.Response.Result == nil {
		return map[string]any{}, nil
	}
	return env.Response.Result, nil
}

func (c *Client) logInvocation(agentID string, payload any, result map[string]any, err error) {
	entry := supplyagent.InvocationLog{
		Agent:     agentID,
		Timestamp: time.Now(),
		Request:   payload,
		Result:    result,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if lerr := c.audit.LogInvocation(entry); lerr != nil {
		slog.Error("GATEWAY: Failed to record invocation", "error", lerr, "agent_id", agentID)
	}
}
