package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
	"github.com/tidwall/sjson"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/safety"
	"github.com/petasbytes/job-agent/internal/telemetry"
	"github.com/petasbytes/job-agent/tools"
)

// Dispatcher executes tool invocations against a registry. Every failure is
// turned into an error result carrying {"error": ...}.
type Dispatcher struct {
	Registry *tools.Registry
	// Concurrency caps parallel handlers within one round; <= 1 runs them in order.
	Concurrency int
	// Timeout bounds each handler call when positive.
	Timeout time.Duration
	Events  *telemetry.Emitter
}

// Execute runs one invocation and returns its result. It does not fail.
func (d *Dispatcher) Execute(ctx context.Context, inv conversation.ToolInvocation) conversation.ToolResult {
	start := time.Now()
	payload, err := d.call(ctx, inv)

	res := conversation.ToolResult{InvocationID: inv.ID, Payload: payload}
	if err != nil {
		res.Payload, res.IsError = errorPayload(err), true
		zerolog.Ctx(ctx).Debug().Err(err).Str("tool", inv.Name).Str("invocation_id", inv.ID).Msg("tool failed")
	}

	var class any
	if err != nil {
		class = errorClass(err)
	}
	d.Events.Emit(ctx, telemetry.EventToolExec, map[string]any{
		"tool_name":     inv.Name,
		"invocation_id": inv.ID,
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_size":    len(inv.Arguments),
		"output_size":   len(res.Payload),
		"error":         class,
	})
	return res
}

// ExecuteAll runs invs and returns their results in the same order.
func (d *Dispatcher) ExecuteAll(ctx context.Context, invs []conversation.ToolInvocation) []conversation.ToolResult {
	if d.Concurrency <= 1 || len(invs) <= 1 {
		out := make([]conversation.ToolResult, len(invs))
		for i, inv := range invs {
			out[i] = d.Execute(ctx, inv)
		}
		return out
	}
	mapper := iter.Mapper[conversation.ToolInvocation, conversation.ToolResult]{MaxGoroutines: d.Concurrency}
	return mapper.Map(invs, func(inv *conversation.ToolInvocation) conversation.ToolResult {
		return d.Execute(ctx, *inv)
	})
}

// execError is a failure inside a handler. Its message is the cause alone;
// the ErrToolExecution class is only visible through errors.Is.
type execError struct{ cause error }

func (e *execError) Error() string   { return e.cause.Error() }
func (e *execError) Unwrap() []error { return []error{ErrToolExecution, e.cause} }

func (d *Dispatcher) call(ctx context.Context, inv conversation.ToolInvocation) (out string, err error) {
	def, ok := d.Registry.Lookup(inv.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, inv.Name)
	}
	if err := ctx.Err(); err != nil {
		return "", &execError{fmt.Errorf("not started: %w", err)}
	}
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			out, err = "", &execError{fmt.Errorf("%s panicked: %v", inv.Name, p)}
		}
	}()
	out, err = def.Handler(ctx, inv.Arguments)
	if err != nil {
		return "", &execError{err}
	}
	return out, nil
}

// errorPayload renders err for the model as {"error": ...}. Sandbox
// violations keep their structured code.
func errorPayload(err error) string {
	var te safety.ToolError
	if errors.As(err, &te) {
		p, _ := sjson.Set(`{}`, "error", te)
		return p
	}
	p, _ := sjson.Set(`{}`, "error", err.Error())
	return p
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "tool_error"
	}
}
