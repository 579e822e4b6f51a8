// Package openai implements llm.RewriteClient and llm.ResolveClient over
// github.com/openai/openai-go, grounded on the teacher's
// features/model/openai provider adapter.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/parserator/kernel/llm"
	"github.com/parserator/kernel/types"
)

// Client adapts an openai.Client to llm.RewriteClient/llm.ResolveClient.
type Client struct {
	sdk   openai.Client
	model openai.ChatModel
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithModel overrides the default model (gpt-4.1).
func WithModel(model openai.ChatModel) Option {
	return func(c *Client) { c.model = model }
}

// New constructs a Client. apiKey may be empty to rely on the SDK's default
// OPENAI_API_KEY environment lookup.
func New(apiKey string, opts ...Option) *Client {
	var sdkOpts []option.RequestOption
	if apiKey != "" {
		sdkOpts = append(sdkOpts, option.WithAPIKey(apiKey))
	}
	c := &Client{
		sdk:   openai.NewClient(sdkOpts...),
		model: openai.ChatModelGPT4_1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Rewrite(ctx context.Context, req llm.RewriteRequest) (llm.RewriteResponse, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(rewritePrompt(req)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return llm.RewriteResponse{}, fmt.Errorf("openai rewrite: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.RewriteResponse{}, fmt.Errorf("openai rewrite: empty response")
	}
	var out struct {
		Steps      []types.SearchStep `json:"steps"`
		Confidence float64            `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return llm.RewriteResponse{}, fmt.Errorf("openai rewrite: decode response: %w", err)
	}
	plan := req.Plan
	plan.Steps = out.Steps
	plan.Metadata.Origin = types.PlanOriginModel
	return llm.RewriteResponse{
		Plan:       plan,
		Confidence: out.Confidence,
		Tokens:     int(resp.Usage.TotalTokens),
	}, nil
}

func (c *Client) Resolve(ctx context.Context, req llm.ResolveRequest) (llm.ResolveResponse, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(resolvePrompt(req)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return llm.ResolveResponse{}, fmt.Errorf("openai resolve: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.ResolveResponse{}, fmt.Errorf("openai resolve: empty response")
	}
	var out struct {
		Fields []llm.FieldResolution `json:"fields"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return llm.ResolveResponse{}, fmt.Errorf("openai resolve: decode response: %w", err)
	}
	return llm.ResolveResponse{
		Fields: out.Fields,
		Tokens: int(resp.Usage.TotalTokens),
	}, nil
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
