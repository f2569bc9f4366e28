// Tests for the heuristic token counter: rune counting, payload handling and
// the fixed per-block overhead.
package windowing_test

import (
	"encoding/json"
	"testing"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/windowing"
)

func TestHeuristicCounter_TextBlocks_CountsRunes(t *testing.T) {
	h := windowing.HeuristicCounter{}
	msg := User(T("hello"), T("世界"))
	got := h.CountMessage(msg)
	// Derive per-block overhead from an empty text block.
	overhead := h.CountMessage(User(T("")))
	want := (5 + 2) + 2*overhead
	if got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}

func TestHeuristicCounter_OverheadGuard(t *testing.T) {
	if got := (windowing.HeuristicCounter{}).CountMessage(User(T(""))); got != 4 {
		t.Fatalf("per-block overhead changed: got=%d want=4", got)
	}
}

func TestHeuristicCounter_ResultPayload(t *testing.T) {
	h := windowing.HeuristicCounter{}
	got := h.CountMessage(User(TRString("t1", "abcdef")))
	overhead := h.CountMessage(User(T("")))
	if want := 6 + overhead; got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}

func TestHeuristicCounter_InvocationCountsNameAndArguments(t *testing.T) {
	h := windowing.HeuristicCounter{}
	inv := conversation.Invocation("t1", "search_jobs", json.RawMessage(`{"max_results":3}`))
	got := h.CountMessage(Asst(inv))
	overhead := h.CountMessage(User(T("")))
	if want := len("search_jobs") + len(`{"max_results":3}`) + overhead; got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}

func TestHeuristicCounter_CountGroup_SumsMessages(t *testing.T) {
	h := windowing.HeuristicCounter{}
	msgs := []conversation.Message{
		User(T("a")),
		Asst(T("b"), T("c")),
		User(TRString("t1", "xyz")),
	}
	groups := []windowing.Group{
		{Kind: windowing.GroupSingleton, Start: 0, End: 1},
		{Kind: windowing.GroupSingleton, Start: 1, End: 2},
		{Kind: windowing.GroupSingleton, Start: 2, End: 3},
	}

	total := 0
	for _, g := range groups {
		total += h.CountGroup(g, msgs)
	}

	overhead := h.CountMessage(User(T("")))
	want := (1 + overhead) + (1 + 1 + 2*overhead) + (3 + overhead)
	if total != want {
		t.Fatalf("got=%d want=%d", total, want)
	}
}
