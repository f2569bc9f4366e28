package windowing_test

import (
	"encoding/json"

	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/windowing"
)

// Text block constructor
func T(text string) conversation.Block { return conversation.Text(text) }

// Invocation with no arguments; the name is empty so only the id matters for grouping.
func TU(id string) conversation.Block { return conversation.Invocation(id, "", json.RawMessage{}) }

// Result with no payload, with optional error flag
func TR(id string, isErr bool) conversation.Block { return conversation.Result(id, "", isErr) }

// Result with a payload, for counter tests
func TRString(id, s string) conversation.Block { return conversation.Result(id, s, false) }

func Asst(blocks ...conversation.Block) conversation.Message {
	return conversation.Message{Role: conversation.RoleAssistant, Content: blocks}
}

func User(blocks ...conversation.Block) conversation.Message {
	return conversation.Message{Role: conversation.RoleUser, Content: blocks}
}

func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
