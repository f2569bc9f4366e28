// Package windowing selects the newest slice of a conversation that fits an
// input-token budget without separating a tool invocation from its results.
package windowing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/petasbytes/job-agent/internal/conversation"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive
	End   int // exclusive
}

// GroupBlocks groups messages into atomic units that preserve invocation/result pairs.
// Invariants:
//   - A pair is exactly two adjacent messages: assistant(invocations...) then user(results...).
//   - In the user message all result blocks come first; trailing text is allowed.
//   - Every invocation id in the assistant message has a result in the user message's
//     leading result segment, and there are no results for other ids.
//   - Error results group the same as successful ones.
//
// Spans that fail a rule fall back to singletons; the reason is logged at debug
// level on the logger carried by ctx.
func GroupBlocks(ctx context.Context, msgs []conversation.Message) []Group {
	log := zerolog.Ctx(ctx)
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == conversation.RoleAssistant {
			invIDs := invocationIDs(m)
			if len(invIDs) > 0 {
				if i+1 < len(msgs) && msgs[i+1].Role == conversation.RoleUser {
					valid, resultIDs := leadingResultIDs(msgs[i+1])
					covers, extra := coversAll(resultIDs, invIDs), !coversAll(invIDs, resultIDs)
					if valid && covers && !extra {
						groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
						i += 2
						continue
					}
					reason := "extra_results"
					switch {
					case !valid:
						reason = "ordering_invalid"
					case !covers:
						reason = "missing_results"
					}
					log.Debug().Str("reason", reason).Int("idx", i).Msg("windowing: exclude pair")
				} else {
					log.Debug().Str("reason", "not_followed_by_user").Int("idx", i).Msg("windowing: exclude pair")
				}
			}
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

func invocationIDs(m conversation.Message) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, inv := range m.Invocations() {
		if inv.ID != "" {
			ids[inv.ID] = struct{}{}
		}
	}
	return ids
}

// leadingResultIDs returns valid=false when a result block follows a non-result
// block, and the ids of the leading result segment.
func leadingResultIDs(m conversation.Message) (valid bool, ids map[string]struct{}) {
	ids = make(map[string]struct{})
	seenOther := false
	for _, blk := range m.Content {
		if r := blk.OfResult; r != nil {
			if seenOther {
				return false, ids
			}
			if r.InvocationID != "" {
				ids[r.InvocationID] = struct{}{}
			}
			continue
		}
		seenOther = true
	}
	return true, ids
}

// coversAll reports whether every id in required is present in have.
func coversAll(have, required map[string]struct{}) bool {
	for id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}
