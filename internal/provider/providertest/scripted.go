// Package providertest provides in-memory model clients for tests.
package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/provider"
)

// Step is one scripted reply. When Err is set it is returned instead.
type Step struct {
	Response provider.Response
	Err      error
}

// Scripted replays Steps in order and records every request it receives.
// Once the script is exhausted the last step repeats when Repeat is set,
// otherwise Send fails.
type Scripted struct {
	mu       sync.Mutex
	Steps    []Step
	Repeat   bool
	requests []provider.Request
}

func (s *Scripted) Send(ctx context.Context, req provider.Request) (provider.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return provider.Response{}, err
	}
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	if i >= len(s.Steps) {
		if !s.Repeat || len(s.Steps) == 0 {
			return provider.Response{}, fmt.Errorf("script exhausted after %d steps", len(s.Steps))
		}
		i = len(s.Steps) - 1
	}
	st := s.Steps[i]
	return st.Response, st.Err
}

// Requests returns the requests received so far.
func (s *Scripted) Requests() []provider.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]provider.Request(nil), s.requests...)
}

// Final builds a final response with a single text block.
func Final(text string) provider.Response {
	return provider.Response{
		Signal:     provider.SignalFinal,
		StopReason: "end_turn",
		Content:    []conversation.Block{conversation.Text(text)},
	}
}

// Call describes one tool invocation in a scripted tool request.
type Call struct {
	ID   string
	Name string
	Args string
}

// ToolRequest builds a tool request response invoking calls in order.
func ToolRequest(calls ...Call) provider.Response {
	resp := provider.Response{Signal: provider.SignalToolRequest, StopReason: "tool_use"}
	for _, c := range calls {
		args := c.Args
		if args == "" {
			args = "{}"
		}
		resp.Content = append(resp.Content, conversation.Invocation(c.ID, c.Name, json.RawMessage(args)))
	}
	return resp
}

// Completer returns Replies in order; the last reply repeats.
type Completer struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Prompts []string
}

func (c *Completer) Complete(_ context.Context, _, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prompts = append(c.Prompts, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Replies) == 0 {
		return "", provider.ErrEmptyCompletion
	}
	r := c.Replies[0]
	if len(c.Replies) > 1 {
		c.Replies = c.Replies[1:]
	}
	return r, nil
}
