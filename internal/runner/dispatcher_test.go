package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/runner"
	"github.com/petasbytes/job-agent/internal/telemetry"
)

func TestDispatcher_InvalidArguments(t *testing.T) {
	d := &runner.Dispatcher{Registry: registry(t, sleepTool())}
	res := d.Execute(context.Background(), conversation.ToolInvocation{
		ID: "v", Name: "sleep", Arguments: json.RawMessage(`{"ms":"soon"}`),
	})
	assert.True(t, res.IsError)
	assert.Equal(t, "v", res.InvocationID)
	assert.Contains(t, res.Payload, "invalid arguments")
}

func TestDispatcher_CancelledContextSkipsHandler(t *testing.T) {
	called := false
	d := &runner.Dispatcher{Registry: registry(t, raw("mark", func(context.Context, json.RawMessage) (string, error) {
		called = true
		return "", nil
	}))}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := d.Execute(ctx, conversation.ToolInvocation{ID: "m", Name: "mark"})
	assert.False(t, called)
	assert.True(t, res.IsError)
	assert.Equal(t, `{"error":"not started: context canceled"}`, res.Payload)
}

func TestDispatcher_ErrorClassesInEvents(t *testing.T) {
	var buf bytes.Buffer
	d := &runner.Dispatcher{
		Registry: registry(t, constant("ok", "fine")),
		Events:   telemetry.New(&buf),
	}
	d.ExecuteAll(context.Background(), []conversation.ToolInvocation{
		{ID: "1", Name: "ok", Arguments: json.RawMessage(`{}`)},
		{ID: "2", Name: "missing"},
	})

	dec := json.NewDecoder(&buf)
	var names, classes []any
	for dec.More() {
		var ev map[string]any
		require.NoError(t, dec.Decode(&ev))
		assert.Equal(t, telemetry.EventToolExec, ev["event"])
		names = append(names, ev["tool_name"])
		classes = append(classes, ev["error"])
	}
	assert.Equal(t, []any{"ok", "missing"}, names)
	assert.Equal(t, []any{nil, "unknown_tool"}, classes)
}

func TestDispatcher_ExecuteAllEmpty(t *testing.T) {
	d := &runner.Dispatcher{Registry: registry(t), Concurrency: 4}
	assert.Empty(t, d.ExecuteAll(context.Background(), nil))
}
