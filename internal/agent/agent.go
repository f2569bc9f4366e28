// Package agent is one job-assistant session: a conversation history, the job
// tool box and the loop that connects them to the model.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/provider"
	"github.com/petasbytes/job-agent/internal/runner"
	"github.com/petasbytes/job-agent/tools"
)

const SystemPrompt = `You are an expert job application assistant helping a job seeker
navigate the global job market.

Your capabilities:
- Search and rank job listings based on the user's skills and preferences
- Provide region-specific market intelligence and application tips
- Generate tailored resumes and cover letters for specific roles, and export them
- Track application progress and analyse success patterns

Principles you ALWAYS follow:
1. Never discriminate or make recommendations based on protected attributes.
2. Be honest about fit: if a role is a stretch, say so constructively.
3. Respect user privacy: never repeat personal details unnecessarily.
4. Be concise and actionable.
5. When you call a tool, tell the user what you are doing and why.

Tool rules:
- Job ids come from search_jobs; run it before generating documents or tracking applications.
- Generated documents contain placeholders such as {{CANDIDATE_NAME}}; leave them as they are.
- A tool result of the form {"error": ...} means the call failed; explain or retry with corrected input.

After tool results arrive, synthesise them into clear, human-readable advice.`

// Unresolved is shown to the user when a turn ends without a final reply.
const Unresolved = "I encountered an unexpected issue. Please try again."

type Agent struct {
	mu      sync.Mutex
	runner  *runner.Runner
	toolbox *tools.Toolbox
	state   *conversation.State
}

// New builds the tool registry once and a runner over it. opts are applied
// after the defaults, so they may replace the system prompt.
func New(client provider.Client, deps tools.Deps, opts ...runner.Option) (*Agent, error) {
	tb := tools.NewToolbox(deps)
	reg, err := tb.Registry()
	if err != nil {
		return nil, fmt.Errorf("build tools: %w", err)
	}
	opts = append([]runner.Option{runner.WithSystemPrompt(SystemPrompt)}, opts...)
	return &Agent{
		runner:  runner.New(client, reg, opts...),
		toolbox: tb,
		state:   conversation.NewState(),
	}, nil
}

// Chat runs one turn. Concurrent calls are serialized.
func (a *Agent) Chat(ctx context.Context, text string) (runner.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runner.Run(ctx, a.state, text)
}

// Reset clears the conversation. The profile and the session caches stay.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Reset()
}

// Restore appends msgs to the history, typically a transcript saved by an
// earlier run. Messages with tool blocks are rejected.
func (a *Agent) Restore(msgs []conversation.Message) error {
	for i, m := range msgs {
		if len(m.Invocations()) > 0 || len(m.Results()) > 0 {
			return fmt.Errorf("restore: message %d carries tool blocks", i)
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range msgs {
		a.state.Append(m)
	}
	return nil
}

func (a *Agent) History() []conversation.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Snapshot()
}

func (a *Agent) Profile() domain.UserProfile { return a.toolbox.Profile() }

func (a *Agent) Toolbox() *tools.Toolbox { return a.toolbox }

// Reply is the text to show for an outcome.
func Reply(o runner.Outcome) string {
	if o.Final() {
		return o.Text
	}
	return Unresolved
}
