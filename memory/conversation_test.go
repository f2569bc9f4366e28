package memory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/memory"
)

func TestConversation_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "conv.json")

	in := []memory.Message{{Role: "user", Text: "hi"}, {Role: "assistant", Text: "hello"}}
	if err := memory.SaveConversation(p, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := memory.LoadConversation(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("mismatch at %d: got %+v want %+v", i, out[i], in[i])
		}
	}
}

func TestConversation_LoadMissing_ReturnsNil(t *testing.T) {
	p := filepath.Join(t.TempDir(), "does-not-exist.json")

	msgs, err := memory.LoadConversation(p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msgs != nil {
		t.Fatalf("expected nil slice for missing file, got %#v", msgs)
	}
}

func TestConversation_LoadInvalidJSON_ReturnsError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(p, []byte("{oops"), 0o664); err != nil {
		t.Fatalf("prep: %v", err)
	}
	if _, err := memory.LoadConversation(p); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestFromHistory_DropsToolBlocks(t *testing.T) {
	history := []conversation.Message{
		conversation.UserText("find jobs"),
		{Role: conversation.RoleAssistant, Content: []conversation.Block{
			conversation.Invocation("a", "search_jobs", json.RawMessage(`{}`)),
		}},
		{Role: conversation.RoleUser, Content: []conversation.Block{conversation.Result("a", "[]", false)}},
		{Role: conversation.RoleAssistant, Content: []conversation.Block{
			conversation.Text("No jobs found."),
			conversation.Text("Try widening the search."),
		}},
	}
	got := memory.FromHistory(history)
	want := []memory.Message{
		{Role: "user", Text: "find jobs"},
		{Role: "assistant", Text: "No jobs found.\nTry widening the search."},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestToHistory(t *testing.T) {
	got, err := memory.ToHistory([]memory.Message{
		{Role: "user", Text: "a"},
		{Role: "user", Text: "b"},
		{Role: "assistant", Text: "c"},
	})
	if err != nil {
		t.Fatalf("to history: %v", err)
	}
	if len(got) != 2 || len(got[0].Content) != 2 || got[1].Role != conversation.RoleAssistant {
		t.Fatalf("got %+v", got)
	}
	if text, _ := got[1].FirstText(); text != "c" {
		t.Fatalf("assistant text %q", text)
	}

	if _, err := memory.ToHistory([]memory.Message{{Role: "system", Text: "x"}}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
