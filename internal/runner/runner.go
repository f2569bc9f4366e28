package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/provider"
	"github.com/petasbytes/job-agent/internal/telemetry"
	"github.com/petasbytes/job-agent/internal/windowing"
	"github.com/petasbytes/job-agent/tools"
)

const DefaultMaxRounds = 10

type OutcomeKind int

const (
	KindFinalText OutcomeKind = iota + 1
	KindUnresolved
)

func (k OutcomeKind) String() string {
	switch k {
	case KindFinalText:
		return "final_text"
	case KindUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Unresolved reasons.
const (
	ReasonRoundBudget      = "round budget exceeded"
	ReasonUnexpectedSignal = "unexpected terminal signal"
	ReasonEmptyToolRequest = "tool request without invocations"
	ReasonCancelled        = "cancelled"
	ReasonModelFailed      = "model call failed"
	ReasonContextBudget    = "context budget exceeded"
)

// Outcome is the terminal result of one turn.
type Outcome struct {
	Kind OutcomeKind
	// Text is the model's final reply when Kind is KindFinalText.
	Text string
	// Reason explains a KindUnresolved outcome.
	Reason string
	// Err classifies an unresolved outcome (ErrProtocol, ErrBudgetExceeded, ...).
	Err error

	Rounds     int
	ToolCalls  int
	ToolErrors int
}

func (o Outcome) Final() bool { return o.Kind == KindFinalText }

// Runner is the loop controller. It is safe for concurrent use on distinct
// states; a single State must not be shared between concurrent Runs.
type Runner struct {
	client     provider.Client
	dispatcher *Dispatcher
	model      string
	maxTokens  int64
	maxRounds  int
	system     string
	budget     int
	counter    windowing.TokenCounter
	events     *telemetry.Emitter
	log        zerolog.Logger
}

type Option func(*Runner)

func WithModel(m string) Option { return func(r *Runner) { r.model = m } }
func WithMaxTokens(n int64) Option { return func(r *Runner) { r.maxTokens = n } }
func WithMaxRounds(n int) Option { return func(r *Runner) { r.maxRounds = n } }
func WithSystemPrompt(s string) Option { return func(r *Runner) { r.system = s } }
func WithLogger(l zerolog.Logger) Option { return func(r *Runner) { r.log = l } }

// WithToolTimeout bounds each handler call; zero leaves handlers unbounded.
func WithToolTimeout(d time.Duration) Option {
	return func(r *Runner) { r.dispatcher.Timeout = d }
}

// WithToolConcurrency lets up to n invocations of one round run in parallel.
func WithToolConcurrency(n int) Option {
	return func(r *Runner) { r.dispatcher.Concurrency = n }
}

// WithTokenBudget sends only the newest messages that fit budget estimated
// input tokens. Zero sends the whole history.
func WithTokenBudget(budget int) Option { return func(r *Runner) { r.budget = budget } }

func WithEmitter(e *telemetry.Emitter) Option {
	return func(r *Runner) {
		r.events = e
		r.dispatcher.Events = e
	}
}

func New(client provider.Client, reg *tools.Registry, opts ...Option) *Runner {
	r := &Runner{
		client:     client,
		dispatcher: &Dispatcher{Registry: reg, Concurrency: 1},
		model:      provider.DefaultModel,
		maxTokens:  1024,
		maxRounds:  DefaultMaxRounds,
		counter:    windowing.HeuristicCounter{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxRounds <= 0 {
		r.maxRounds = DefaultMaxRounds
	}
	return r
}

// Dispatcher returns the dispatcher used for tool rounds.
func (r *Runner) Dispatcher() *Dispatcher { return r.dispatcher }

// Run appends userText to state and alternates model and tool rounds until
// the model produces a final reply or a terminal condition is reached.
//
// The returned error is non-nil only when the caller's context ended or the
// model could not be reached; every other problem is reported through the
// outcome. In all cases state is left with matched invocations and results.
func (r *Runner) Run(ctx context.Context, state *conversation.State, userText string) (Outcome, error) {
	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx, _ = telemetry.NewTurn(ctx)
	}
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	log := r.log.With().Str("turn_id", turnID).Logger()
	ctx = log.WithContext(ctx)

	r.events.TurnStarted(ctx, userText, state.Snapshot())
	state.Append(conversation.UserText(userText))

	var out Outcome
	finish := func(o Outcome, err error) (Outcome, error) {
		o.Rounds, o.ToolCalls, o.ToolErrors = out.Rounds, out.ToolCalls, out.ToolErrors
		fields := map[string]any{"outcome": o.Kind.String(), "rounds": o.Rounds, "tool_calls": o.ToolCalls}
		if o.Kind == KindUnresolved {
			fields["reason"] = o.Reason
		}
		r.events.Emit(ctx, telemetry.EventTurnFinished, fields)
		log.Debug().Str("outcome", o.Kind.String()).Str("reason", o.Reason).Int("rounds", o.Rounds).Msg("turn finished")
		return o, err
	}

	for out.Rounds < r.maxRounds {
		if err := ctx.Err(); err != nil {
			return finish(unresolved(ReasonCancelled, err), err)
		}

		msgs, err := r.window(ctx, state.Snapshot())
		if err != nil {
			return finish(unresolved(ReasonContextBudget, err), nil)
		}

		out.Rounds++
		start := time.Now()
		resp, err := r.client.Send(ctx, provider.Request{
			Model:     r.model,
			MaxTokens: r.maxTokens,
			System:    r.system,
			Tools:     r.dispatcher.Registry.Specs(),
			Messages:  msgs,
		})
		r.emitModelCall(ctx, out.Rounds, resp, err, time.Since(start))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return finish(unresolved(ReasonCancelled, ctxErr), ctxErr)
			}
			err = fmt.Errorf("model call (round %d): %w", out.Rounds, err)
			return finish(unresolved(ReasonModelFailed, err), err)
		}

		reply := conversation.Message{Role: conversation.RoleAssistant, Content: resp.Content}
		state.Append(reply)
		invs := reply.Invocations()
		switch {
		case resp.Signal == provider.SignalOther:
			answerUnexecuted(state, invs, ReasonUnexpectedSignal)
			return finish(unresolved(ReasonUnexpectedSignal,
				fmt.Errorf("%w: stop reason %q", ErrProtocol, resp.StopReason)), nil)

		case len(invs) > 0:
			// Invocations win over any text in the same reply; the text stays in history.
			results := r.dispatcher.ExecuteAll(ctx, invs)
			out.ToolCalls += len(results)
			blocks := make([]conversation.Block, len(results))
			for i, res := range results {
				if res.IsError {
					out.ToolErrors++
				}
				blocks[i] = conversation.Result(res.InvocationID, res.Payload, res.IsError)
			}
			state.Append(conversation.Message{Role: conversation.RoleUser, Content: blocks})

		case resp.Signal == provider.SignalToolRequest:
			return finish(unresolved(ReasonEmptyToolRequest,
				fmt.Errorf("%w: tool request without invocations", ErrProtocol)), nil)

		default:
			// A final reply without text is still final.
			text, _ := reply.FirstText()
			return finish(Outcome{Kind: KindFinalText, Text: text}, nil)
		}
	}
	return finish(unresolved(ReasonRoundBudget,
		fmt.Errorf("%w: %d rounds without a final reply", ErrBudgetExceeded, r.maxRounds)), nil)
}

func unresolved(reason string, err error) Outcome {
	return Outcome{Kind: KindUnresolved, Reason: reason, Err: err}
}

// answerUnexecuted appends an error result for each invocation of a round
// that ends without running its tools, so the next request stays well formed.
func answerUnexecuted(state *conversation.State, invs []conversation.ToolInvocation, reason string) {
	if len(invs) == 0 {
		return
	}
	blocks := make([]conversation.Block, len(invs))
	for i, inv := range invs {
		blocks[i] = conversation.Result(inv.ID, errorPayload(errors.New("not executed: "+reason)), true)
	}
	state.Append(conversation.Message{Role: conversation.RoleUser, Content: blocks})
}

func (r *Runner) window(ctx context.Context, msgs []conversation.Message) ([]conversation.Message, error) {
	if r.budget <= 0 {
		return msgs, nil
	}
	window, stats := windowing.PrepareSendWindow(ctx, msgs, r.budget, r.counter)
	r.events.Emit(ctx, telemetry.EventWindowPrepared, map[string]any{
		"model":              r.model,
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: newest messages exceed token budget %d", ErrBudgetExceeded, r.budget)
	}
	return window, nil
}

func (r *Runner) emitModelCall(ctx context.Context, round int, resp provider.Response, err error, d time.Duration) {
	fields := map[string]any{
		"round":       round,
		"model":       r.model,
		"duration_ms": d.Milliseconds(),
	}
	if err != nil {
		fields["error"] = "model_error"
	} else {
		fields["signal"] = string(resp.Signal)
		fields["stop_reason"] = resp.StopReason
	}
	r.events.Emit(ctx, telemetry.EventModelCall, fields)
}
