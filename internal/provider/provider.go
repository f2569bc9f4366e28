// Package provider defines the model client boundary used by the loop and a
// Messages API implementation of it.
package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/petasbytes/job-agent/internal/conversation"
)

const DefaultModel = "claude-sonnet-4-5"

// Signal is the model's reason for ending its turn, reduced to what the loop acts on.
type Signal string

const (
	SignalFinal       Signal = "final"
	SignalToolRequest Signal = "tool_request"
	SignalOther       Signal = "other"
)

// ToolSpec is the advertised contract of one tool.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

type Request struct {
	Model     string
	MaxTokens int64
	System    string
	Tools     []ToolSpec
	Messages  []conversation.Message
}

type Response struct {
	Signal Signal
	// StopReason is the raw stop reason reported by the backend.
	StopReason string
	Content    []conversation.Block
}

// Client sends one request to a model.
type Client interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// ErrEmptyCompletion is returned when a completion carries no text.
var ErrEmptyCompletion = errors.New("model returned no text")

// Completer runs single-shot prompts without tools.
type Completer struct {
	Client    Client
	Model     string
	MaxTokens int64
}

// Complete sends prompt as one user message and returns the first text block.
func (c Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	resp, err := c.Client.Send(ctx, Request{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []conversation.Message{conversation.UserText(prompt)},
	})
	if err != nil {
		return "", err
	}
	for _, b := range resp.Content {
		if b.OfText != nil && strings.TrimSpace(b.OfText.Text) != "" {
			return b.OfText.Text, nil
		}
	}
	return "", ErrEmptyCompletion
}

// TextCompleter is implemented by Completer and by test fakes.
type TextCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// StripFences removes a surrounding markdown code fence from model output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
