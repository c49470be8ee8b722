// Package bedrock fulfils the decision-service contract with an Amazon
// Bedrock model instead of a remote HTTP agent. The model is forced to answer
// through a single structured-output tool whose input schema is the agent's
// documented result schema, so callers receive the same raw result map the
// HTTP gateway produces.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"supplyagent/agents"
	"supplyagent/gateway"
)

const (
	decisionToolName = "record_decision"

	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
	defaultTopP        = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type ClientOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Client struct {
	brc      bedrockRuntimeClient
	registry agents.Registry
	opts     ClientOptions
}

func NewClient(brc bedrockRuntimeClient, registry agents.Registry, opts ClientOptions) *Client {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Client{
		brc:      brc,
		registry: registry,
		opts:     opts,
	}
}

// Invoke renders the payload as the user message, forces the decision tool
// and returns the tool input as the raw result map.
func (c *Client) Invoke(ctx context.Context, payload any, agentID string) (map[string]any, error) {
	desc, err := c.registry.Get(agentID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent payload: %w", err)
	}

	spec, err := buildDecisionToolSpec(desc)
	if err != nil {
		return nil, err
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: &c.opts.ModelID,
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: desc.SystemPrompt},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: string(body)},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
		ToolConfig: &types.ToolConfiguration{
			Tools: []types.Tool{&types.ToolMemberToolSpec{Value: spec}},
			ToolChoice: &types.ToolChoiceMemberTool{
				Value: types.SpecificToolChoice{Name: aws.String(decisionToolName)},
			},
		},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("BEDROCK_CALLER: Converse failed", "error", err, "agent", desc.Name)
		return nil, fmt.Errorf("bedrock converse for %s: %w", desc.Name, err)
	}

	slog.Info("BEDROCK_CALLER: Converse succeeded",
		"agent", desc.Name,
		"stop_reason", out.StopReason,
		"input_tokens", aws.ToInt32(out.Usage.InputTokens),
		"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
	)

	switch out.StopReason {
	case types.StopReasonToolUse:
		result, err := decisionFromOutput(out)
		if err != nil {
			return nil, err
		}
		return result, nil

	case types.StopReasonMaxTokens:
		return nil, &gateway.RejectedError{Message: "model hit the token limit before recording a decision"}

	default:
		// Some models answer with a bare JSON text block despite the forced
		// tool choice; accept it when it parses as an object.
		if result, ok := decisionFromText(out); ok {
			return result, nil
		}
		return nil, &gateway.RejectedError{Message: "model returned no structured decision"}
	}
}

// buildDecisionToolSpec turns the descriptor's result schema into the forced
// tool specification.
func buildDecisionToolSpec(desc agents.Descriptor) (types.ToolSpecification, error) {
	// Pre-marshal the schema so its custom MarshalJSON is honored, then parse
	// it back for the document system.
	schemaJSON, err := json.Marshal(desc.ResultSchema)
	if err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to marshal result schema for %s: %w", desc.Name, err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to unmarshal result schema for %s: %w", desc.Name, err)
	}

	return types.ToolSpecification{
		Name:        aws.String(decisionToolName),
		Description: aws.String("Record the final decision for: " + desc.Purpose),
		InputSchema: &types.ToolInputSchemaMemberJson{
			Value: document.NewLazyDocument(schemaMap),
		},
	}, nil
}

func decisionFromOutput(out *bedrockruntime.ConverseOutput) (map[string]any, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return nil, &gateway.RejectedError{Message: "model returned no structured decision"}
	}

	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok || tu == nil {
			continue
		}
		var input map[string]any
		if err := tu.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
			return nil, fmt.Errorf("failed to decode decision input: %w", err)
		}
		return input, nil
	}

	return nil, &gateway.RejectedError{Message: "model returned no structured decision"}
}

func decisionFromText(out *bedrockruntime.ConverseOutput) (map[string]any, bool) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return nil, false
	}
	for _, cb := range msg.Value.Content {
		t, ok := cb.(*types.ContentBlockMemberText)
		if !ok || t == nil {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(t.Value), &m); err == nil {
			return m, true
		}
	}
	return nil, false
}
