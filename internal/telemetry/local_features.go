package telemetry

import (
	"context"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/metrics"
)

const (
	EventTurnStarted    = "turn_started"
	EventWindowPrepared = "window_prepared"
	EventModelCall      = "model_call"
	EventToolExec       = "tool_exec"
	EventTurnFinished   = "turn_finished"
)

// featuresVersion changes whenever the shape of the feature fields changes.
const featuresVersion = "2"

// TurnStarted records local features of the user's input and of the history
// it is appended to.
func (e *Emitter) TurnStarted(ctx context.Context, user string, history []conversation.Message) {
	if e == nil {
		return
	}
	e.Emit(ctx, EventTurnStarted, map[string]any{
		"features_version": featuresVersion,
		"user":             metrics.CountFeatures(user).Fields(),
		"history":          metrics.Summarize(history).Fields(),
	})
}
