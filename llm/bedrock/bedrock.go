// Package bedrock implements llm.RewriteClient and llm.ResolveClient over
// github.com/aws/aws-sdk-go-v2/service/bedrockruntime, grounded on the
// teacher's features/model/bedrock provider adapter. Bedrock's Converse API
// is model-family agnostic, so this client works against any Bedrock text
// model ARN the caller configures.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/parserator/kernel/llm"
	"github.com/parserator/kernel/types"
)

// Client adapts a bedrockruntime.Client to llm.RewriteClient/llm.ResolveClient.
type Client struct {
	sdk     *bedrockruntime.Client
	modelID string
}

// New constructs a Client over an already-configured bedrockruntime.Client,
// targeting modelID (e.g. "anthropic.claude-3-5-sonnet-20241022-v2:0").
func New(sdk *bedrockruntime.Client, modelID string) *Client {
	return &Client{sdk: sdk, modelID: modelID}
}

func (c *Client) converse(ctx context.Context, prompt string) (string, int, error) {
	out, err := c.sdk.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []brtypes.Message{
			{
				Role:    brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt}},
			},
		},
	})
	if err != nil {
		return "", 0, err
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", 0, fmt.Errorf("bedrock: unexpected output type")
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	tokens := 0
	if out.Usage != nil {
		tokens = int(aws.ToInt32(out.Usage.InputTokens) + aws.ToInt32(out.Usage.OutputTokens))
	}
	return b.String(), tokens, nil
}

func (c *Client) Rewrite(ctx context.Context, req llm.RewriteRequest) (llm.RewriteResponse, error) {
	text, tokens, err := c.converse(ctx, rewritePrompt(req))
	if err != nil {
		return llm.RewriteResponse{}, fmt.Errorf("bedrock rewrite: %w", err)
	}
	var out struct {
		Steps      []types.SearchStep `json:"steps"`
		Confidence float64            `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return llm.RewriteResponse{}, fmt.Errorf("bedrock rewrite: decode response: %w", err)
	}
	plan := req.Plan
	plan.Steps = out.Steps
	plan.Metadata.Origin = types.PlanOriginModel
	return llm.RewriteResponse{Plan: plan, Confidence: out.Confidence, Tokens: tokens}, nil
}

func (c *Client) Resolve(ctx context.Context, req llm.ResolveRequest) (llm.ResolveResponse, error) {
	text, tokens, err := c.converse(ctx, resolvePrompt(req))
	if err != nil {
		return llm.ResolveResponse{}, fmt.Errorf("bedrock resolve: %w", err)
	}
	var out struct {
		Fields []llm.FieldResolution `json:"fields"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return llm.ResolveResponse{}, fmt.Errorf("bedrock resolve: decode response: %w", err)
	}
	return llm.ResolveResponse{Fields: out.Fields, Tokens: tokens}, nil
}

func rewritePrompt(req llm.RewriteRequest) string {
	var b strings.Builder
	b.WriteString("Improve this extraction plan. Respond with JSON {\"steps\":[...],\"confidence\":0-1}.\n")
	b.WriteString("Instructions: " + req.Instructions + "\n")
	b.WriteString("Sample:\n" + req.Sample + "\n")
	raw, _ := json.Marshal(req.Plan.Steps)
	b.WriteString("Current steps: " + string(raw) + "\n")
	return b.String()
}

func resolvePrompt(req llm.ResolveRequest) string {
	var b strings.Builder
	b.WriteString("Resolve these fields from the input. Respond with JSON {\"fields\":[{\"targetKey\":...,\"value\":...,\"defined\":bool,\"confidence\":0-1}]}.\n")
	b.WriteString("Instructions: " + req.Instructions + "\n")
	b.WriteString("Input:\n" + req.Input + "\n")
	raw, _ := json.Marshal(req.Fields)
	b.WriteString("Fields: " + string(raw) + "\n")
	return b.String()
}
