package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/job-agent/internal/conversation"
)

// NewAnthropicClient returns a client. The API key is read from the env unless
// an option overrides it.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic implements Client on the Messages API.
type Anthropic struct {
	client *anthropic.Client
}

func NewAnthropic(client *anthropic.Client) *Anthropic {
	return &Anthropic{client: client}
}

func (a *Anthropic) Send(ctx context.Context, req Request) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toMessageParams(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toToolParams(req.Tools)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("messages.new: %w", err)
	}

	out := Response{
		Signal:     signalOf(msg.StopReason),
		StopReason: string(msg.StopReason),
		Content:    make([]conversation.Block, 0, len(msg.Content)),
	}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content = append(out.Content, conversation.Text(v.Text))
		case anthropic.ToolUseBlock:
			// Keep the raw JSON input as the model produced it.
			args := json.RawMessage(v.JSON.Input.Raw())
			out.Content = append(out.Content, conversation.Invocation(v.ID, v.Name, args))
		}
	}
	return out, nil
}

func signalOf(r anthropic.StopReason) Signal {
	switch r {
	case anthropic.StopReasonEndTurn:
		return SignalFinal
	case anthropic.StopReasonToolUse:
		return SignalToolRequest
	default:
		return SignalOther
	}
}

func toToolParams(specs []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, s := range specs {
		schema := anthropic.ToolInputSchemaParam{}
		if s.InputSchema != nil {
			schema.Properties = s.InputSchema.Properties
			schema.Required = s.InputSchema.Required
			if ap := s.InputSchema.AdditionalProperties; ap != nil {
				schema.ExtraFields = map[string]any{"additionalProperties": ap}
			}
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        s.Name,
			Description: anthropic.String(s.Description),
			InputSchema: schema,
		}})
	}
	return out
}

func toMessageParams(msgs []conversation.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			switch {
			case b.OfText != nil:
				// The API rejects empty text blocks.
				if b.OfText.Text == "" {
					continue
				}
				blocks = append(blocks, anthropic.NewTextBlock(b.OfText.Text))
			case b.OfInvocation != nil:
				args := b.OfInvocation.Arguments
				if len(args) == 0 {
					args = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    b.OfInvocation.ID,
					Name:  b.OfInvocation.Name,
					Input: args,
				}})
			case b.OfResult != nil:
				blocks = append(blocks, anthropic.NewToolResultBlock(b.OfResult.InvocationID, b.OfResult.Payload, b.OfResult.IsError))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if m.Role == conversation.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}
