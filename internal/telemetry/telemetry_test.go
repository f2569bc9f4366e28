package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/telemetry"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmit_WritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	e := telemetry.New(&buf)
	ctx := telemetry.WithTurnID(context.Background(), "turn-1")

	e.Emit(ctx, "test_event", map[string]any{"foo": "bar", "num": 42})
	e.Emit(context.Background(), "other", nil)

	events := decodeLines(t, buf.Bytes())
	if len(events) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(events))
	}
	ev := events[0]
	if ev["event"] != "test_event" || ev["foo"] != "bar" || ev["num"] != float64(42) || ev["turn_id"] != "turn-1" {
		t.Fatalf("unexpected event: %v", ev)
	}
	ts, ok := ev["time"].(string)
	if !ok {
		t.Fatalf("missing time: %v", ev)
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Fatalf("time not RFC3339Nano: %v", err)
	}
	if _, ok := events[1]["turn_id"]; ok {
		t.Fatalf("turn_id should be absent without a turn: %v", events[1])
	}
}

func TestEmit_NilEmitterIsNoop(t *testing.T) {
	var e *telemetry.Emitter
	e.Emit(context.Background(), "x", map[string]any{"a": 1})
	e.TurnStarted(context.Background(), "hi", nil)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_AppendsToEventsFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	for i := 0; i < 2; i++ {
		e, err := telemetry.Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		e.Emit(context.Background(), "run", map[string]any{"i": i})
		if err := e.Close(); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, telemetry.EventsFile))
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeLines(t, data); len(got) != 2 || got[1]["i"] != float64(1) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestTurnStarted_NoRawText(t *testing.T) {
	var buf bytes.Buffer
	e := telemetry.New(&buf)
	history := []conversation.Message{conversation.UserText("earlier"), conversation.AssistantText("reply")}

	e.TurnStarted(context.Background(), "my secret salary is 90k", history)

	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("raw text leaked: %s", buf.String())
	}
	ev := decodeLines(t, buf.Bytes())[0]
	if ev["event"] != telemetry.EventTurnStarted || ev["features_version"] != "2" {
		t.Fatalf("unexpected event: %v", ev)
	}
	user := ev["user"].(map[string]any)
	if user["words"] != float64(5) {
		t.Fatalf("unexpected user features: %v", user)
	}
	hist := ev["history"].(map[string]any)
	if hist["messages"] != float64(2) {
		t.Fatalf("unexpected history features: %v", hist)
	}
}
