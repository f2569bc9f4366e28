package windowing_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/windowing"
)

func pair(start int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupPair, Start: start, End: start + 2}
}

func single(start int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupSingleton, Start: start, End: start + 1}
}

func TestGroupBlocks_JobSession(t *testing.T) {
	search := conversation.Invocation("call_search", "search_jobs", json.RawMessage(`{"location_filter":"Berlin"}`))
	resume := conversation.Invocation("call_resume", "generate_resume", json.RawMessage(`{"job_id":"j-1"}`))
	tips := conversation.Invocation("call_tips", "get_application_tips", json.RawMessage(`{"region":"Germany"}`))

	msgs := []conversation.Message{
		conversation.UserText("find me Go jobs in Berlin"),
		Asst(T("Searching."), search),
		User(conversation.Result("call_search", `[{"id":"j-1"}]`, false)),
		Asst(T("Found one at Acme.")),
		conversation.UserText("write a resume and tell me how to apply"),
		Asst(resume, tips),
		User(
			conversation.Result("call_tips", `"Use a photo-free CV."`, false),
			conversation.Result("call_resume", `{"error":"boom"}`, true),
		),
		Asst(T("Here you go.")),
	}

	got := windowing.GroupBlocks(context.Background(), msgs)
	want := []windowing.Group{single(0), pair(1), single(3), single(4), pair(5), single(7)}
	if !groupsEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}

	// Groups tile the history without gaps.
	next := 0
	for _, g := range got {
		if g.Start != next {
			t.Fatalf("gap before %v", g)
		}
		next = g.End
	}
	if next != len(msgs) {
		t.Fatalf("groups end at %d, history has %d messages", next, len(msgs))
	}
}

// Each case is an assistant message with invocations followed by a reply
// that does not answer them properly, so neither message forms a pair.
func TestGroupBlocks_BrokenPairs(t *testing.T) {
	cases := map[string][]conversation.Message{
		"text before results":      {Asst(TU("a")), User(T("wait"), TR("a", false))},
		"one of two answered":      {Asst(TU("a"), TU("b")), User(TR("a", false))},
		"unrelated result id":      {Asst(TU("a")), User(TR("z", false))},
		"extra result":             {Asst(TU("a")), User(TR("a", false), TR("z", false))},
		"results split by text":    {Asst(TU("a")), User(TR("a", false), T("mid"), TR("a", false))},
		"reply is plain text":      {Asst(TU("a")), User(T("never mind"))},
		"assistant answers itself": {Asst(TU("a")), Asst(T("note"))},
	}
	for name, msgs := range cases {
		t.Run(name, func(t *testing.T) {
			got := windowing.GroupBlocks(context.Background(), msgs)
			if want := []windowing.Group{single(0), single(1)}; !groupsEqual(got, want) {
				t.Fatalf("groups = %v, want %v", got, want)
			}
		})
	}
}

func TestGroupBlocks_Pairs(t *testing.T) {
	cases := map[string][]conversation.Message{
		"single call":                  {Asst(TU("a")), User(TR("a", false))},
		"error result":                 {Asst(TU("a")), User(TR("a", true))},
		"parallel calls any order":     {Asst(TU("a"), TU("b")), User(TR("b", false), TR("a", false))},
		"trailing text after results":  {Asst(T("checking"), TU("a")), User(TR("a", false), T("thanks"))},
		"duplicate result for same id": {Asst(TU("a")), User(TR("a", false), TR("a", true))},
	}
	for name, msgs := range cases {
		t.Run(name, func(t *testing.T) {
			got := windowing.GroupBlocks(context.Background(), msgs)
			if want := []windowing.Group{pair(0)}; !groupsEqual(got, want) {
				t.Fatalf("groups = %v, want %v", got, want)
			}
		})
	}
}

func TestGroupBlocks_Edges(t *testing.T) {
	if got := windowing.GroupBlocks(context.Background(), nil); len(got) != 0 {
		t.Fatalf("empty history: %v", got)
	}
	got := windowing.GroupBlocks(context.Background(), []conversation.Message{Asst(TU("a"))})
	if want := []windowing.Group{single(0)}; !groupsEqual(got, want) {
		t.Fatalf("dangling invocation: %v", got)
	}
}
