package agent_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/job-agent/internal/agent"
	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/documents"
	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/jobs"
	"github.com/petasbytes/job-agent/internal/provider/providertest"
	"github.com/petasbytes/job-agent/internal/runner"
	"github.com/petasbytes/job-agent/internal/store"
	"github.com/petasbytes/job-agent/internal/tracker"
	"github.com/petasbytes/job-agent/tools"
)

type fixedSource []domain.JobListing

func (f fixedSource) Fetch(context.Context, domain.UserProfile) ([]domain.JobListing, error) {
	return append([]domain.JobListing(nil), f...), nil
}

func deps(t *testing.T) tools.Deps {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	source := fixedSource{{ID: "j-go", Title: "Backend Engineer", Company: "Acme", Requirements: []string{"Go"}}}
	model := &providertest.Completer{Replies: []string{"## {{CANDIDATE_NAME}}\n\nGo services."}}
	return tools.Deps{
		Profile:   domain.UserProfile{ID: "u1", Name: "Grace Hopper", Skills: []string{"Go"}},
		Search:    jobs.NewSearchEngine(source, nil, st, zerolog.Nop()),
		Market:    jobs.NewMarketService(model, st),
		Documents: documents.NewGenerator(model, st, "test-model"),
		Tracker:   tracker.New(st, model),
		Lookup:    st,
	}
}

func TestChat_SearchThenAnswer(t *testing.T) {
	client := &providertest.Scripted{Steps: []providertest.Step{
		{Response: providertest.ToolRequest(providertest.Call{ID: "a", Name: "search_jobs"})},
		{Response: providertest.Final("One Go role at Acme.")},
	}}
	a, err := agent.New(client, deps(t))
	require.NoError(t, err)

	out, err := a.Chat(context.Background(), "find me Go jobs")
	require.NoError(t, err)
	assert.Equal(t, "One Go role at Acme.", agent.Reply(out))

	history := a.History()
	require.Len(t, history, 4)
	assert.NoError(t, conversation.CheckPairing(history))
	res := history[2].Results()
	require.Len(t, res, 1)
	assert.False(t, res[0].IsError)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res[0].Payload), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "j-go", listed[0]["id"])

	_, cached := a.Toolbox().Job("j-go")
	assert.True(t, cached)

	req := client.Requests()[0]
	assert.Equal(t, agent.SystemPrompt, req.System)
	assert.Len(t, req.Tools, 10)
}

func TestReset_KeepsSessionCaches(t *testing.T) {
	client := &providertest.Scripted{Steps: []providertest.Step{
		{Response: providertest.ToolRequest(providertest.Call{ID: "a", Name: "search_jobs"})},
		{Response: providertest.Final("found")},
		{Response: providertest.ToolRequest(providertest.Call{ID: "b", Name: "generate_resume", Args: `{"job_id":"j-go"}`})},
		{Response: providertest.Final("drafted")},
	}}
	a, err := agent.New(client, deps(t))
	require.NoError(t, err)

	_, err = a.Chat(context.Background(), "search")
	require.NoError(t, err)
	a.Reset()
	assert.Empty(t, a.History())
	assert.Equal(t, "u1", a.Profile().ID)

	out, err := a.Chat(context.Background(), "write my resume")
	require.NoError(t, err)
	assert.Equal(t, "drafted", out.Text)

	history := a.History()
	require.Len(t, history, 4)
	res := history[2].Results()
	require.Len(t, res, 1)
	assert.False(t, res[0].IsError, res[0].Payload)
	assert.Contains(t, res[0].Payload, "{{CANDIDATE_NAME}}")
	assert.NotContains(t, res[0].Payload, "Grace Hopper")
}

func TestChat_SerializesTurns(t *testing.T) {
	client := &providertest.Scripted{Repeat: true, Steps: []providertest.Step{{Response: providertest.Final("ok")}}}
	a, err := agent.New(client, deps(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Chat(context.Background(), "ping")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history := a.History()
	require.Len(t, history, 16)
	for i, m := range history {
		want := conversation.RoleUser
		if i%2 == 1 {
			want = conversation.RoleAssistant
		}
		assert.Equal(t, want, m.Role, "message %d", i)
	}
}

func TestChat_UnresolvedReply(t *testing.T) {
	client := &providertest.Scripted{Repeat: true, Steps: []providertest.Step{
		{Response: providertest.ToolRequest(providertest.Call{ID: "x", Name: "get_feedback_analysis"})},
	}}
	a, err := agent.New(client, deps(t), runner.WithMaxRounds(2))
	require.NoError(t, err)

	out, err := a.Chat(context.Background(), "loop")
	require.NoError(t, err)
	assert.Equal(t, runner.ReasonRoundBudget, out.Reason)
	assert.Equal(t, agent.Unresolved, agent.Reply(out))
}

func TestNew_OptionsOverrideSystemPrompt(t *testing.T) {
	client := &providertest.Scripted{Steps: []providertest.Step{{Response: providertest.Final("ok")}}}
	a, err := agent.New(client, deps(t), runner.WithSystemPrompt("custom"))
	require.NoError(t, err)
	_, err = a.Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "custom", client.Requests()[0].System)
}

func TestRestore(t *testing.T) {
	client := &providertest.Scripted{Steps: []providertest.Step{{Response: providertest.Final("welcome back")}}}
	a, err := agent.New(client, deps(t))
	require.NoError(t, err)

	bad := []conversation.Message{{Role: conversation.RoleAssistant, Content: []conversation.Block{
		conversation.Invocation("i", "search_jobs", json.RawMessage(`{}`)),
	}}}
	assert.Error(t, a.Restore(bad))
	assert.Empty(t, a.History())

	require.NoError(t, a.Restore([]conversation.Message{
		conversation.UserText("hello"),
		conversation.AssistantText("hi there"),
	}))
	_, err = a.Chat(context.Background(), "again")
	require.NoError(t, err)
	assert.Len(t, client.Requests()[0].Messages, 3)
}
