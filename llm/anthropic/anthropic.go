// Package anthropic implements llm.RewriteClient and llm.ResolveClient over
// github.com/anthropics/anthropic-sdk-go, grounded on the teacher's
// features/model/anthropic provider adapter (a thin wrapper translating the
// kernel's request/response shapes to and from the SDK's message types).
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/parserator/kernel/llm"
	"github.com/parserator/kernel/types"
)

// Client adapts an anthropic.Client to llm.RewriteClient/llm.ResolveClient.
type Client struct {
	sdk   anthropic.Client
	model anthropic.Model
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithModel overrides the default model (claude-sonnet-4-5).
func WithModel(model anthropic.Model) Option {
	return func(c *Client) { c.model = model }
}

// New constructs a Client. apiKey may be empty to rely on the SDK's default
// ANTHROPIC_API_KEY environment lookup.
func New(apiKey string, opts ...Option) *Client {
	var sdkOpts []option.RequestOption
	if apiKey != "" {
		sdkOpts = append(sdkOpts, option.WithAPIKey(apiKey))
	}
	c := &Client{
		sdk:   anthropic.NewClient(sdkOpts...),
		model: anthropic.ModelClaudeSonnet4_5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Rewrite(ctx context.Context, req llm.RewriteRequest) (llm.RewriteResponse, error) {
	prompt := rewritePrompt(req)
	msg, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return llm.RewriteResponse{}, fmt.Errorf("anthropic rewrite: %w", err)
	}
	var out struct {
		Steps      []types.SearchStep `json:"steps"`
		Confidence float64            `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extractText(msg)), &out); err != nil {
		return llm.RewriteResponse{}, fmt.Errorf("anthropic rewrite: decode response: %w", err)
	}
	plan := req.Plan
	plan.Steps = out.Steps
	plan.Metadata.Origin = types.PlanOriginModel
	return llm.RewriteResponse{
		Plan:       plan,
		Confidence: out.Confidence,
		Tokens:     int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}, nil
}

func (c *Client) Resolve(ctx context.Context, req llm.ResolveRequest) (llm.ResolveResponse, error) {
	prompt := resolvePrompt(req)
	msg, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return llm.ResolveResponse{}, fmt.Errorf("anthropic resolve: %w", err)
	}
	var out struct {
		Fields []llm.FieldResolution `json:"fields"`
	}
	if err := json.Unmarshal([]byte(extractText(msg)), &out); err != nil {
		return llm.ResolveResponse{}, fmt.Errorf("anthropic resolve: decode response: %w", err)
	}
	return llm.ResolveResponse{
		Fields: out.Fields,
		Tokens: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}, nil
}

func extractText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
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
