package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/job-agent/internal/conversation"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m conversation.Message) int
	CountGroup(g Group, all []conversation.Message) int
}

// HeuristicCounter is the default deterministic estimator.
// Rules:
//   - text blocks: rune count of the text
//   - invocations: rune count of the tool name plus the raw arguments
//   - results: rune count of the payload
//
// Every block adds a small fixed overhead for formatting.
type HeuristicCounter struct{}

// Fixed per-block overhead; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m conversation.Message) int {
	total := 0
	for _, blk := range m.Content {
		total += countBlock(blk)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []conversation.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func countBlock(blk conversation.Block) int {
	switch {
	case blk.OfText != nil:
		return utf8.RuneCountInString(blk.OfText.Text) + blockOverhead
	case blk.OfInvocation != nil:
		return utf8.RuneCountInString(blk.OfInvocation.Name) + utf8.RuneCount(blk.OfInvocation.Arguments) + blockOverhead
	case blk.OfResult != nil:
		return utf8.RuneCountInString(blk.OfResult.Payload) + blockOverhead
	}
	return blockOverhead
}
