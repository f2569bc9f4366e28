package windowing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/petasbytes/job-agent/internal/conversation"
)

// Stats summarizes the result of window preparation.
//
// Fields:
//   - Total: estimated tokens for included groups only.
//   - Budget: the input token budget used.
//   - IncludedGroups: number of groups included.
//   - SkippedGroups: total groups minus IncludedGroups.
//   - OverBudgetNewest: true when the newest single group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns a subslice of msgs (oldest to newest) that fits
// within budget using c, without splitting groups.
//
// Rules:
//   - Include whole groups scanning newest to oldest while total <= budget.
//   - The window opens on a plain user message; groups before the first one
//     that does are dropped.
//   - If the newest group alone exceeds budget, return an empty window and set OverBudgetNewest.
//   - If budget <= 0, return an empty window (OverBudgetNewest set when any groups exist).
func PrepareSendWindow(ctx context.Context, msgs []conversation.Message, budget int, c TokenCounter) ([]conversation.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}

	groups := GroupBlocks(ctx, msgs)

	if budget <= 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	costs := make([]int, len(groups))
	for i, g := range groups {
		costs[i] = c.CountGroup(g, msgs)
	}

	total, included := 0, 0
	startIdx := len(groups)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		if included == 0 && costs[gi] > budget {
			zerolog.Ctx(ctx).Debug().Int("budget", budget).Int("cost", costs[gi]).Msg("windowing: newest group over budget")
			return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
		}
		if total+costs[gi] > budget {
			break
		}
		total += costs[gi]
		included++
		startIdx = gi
	}

	for startIdx < len(groups) && !opensWindow(msgs[groups[startIdx].Start]) {
		total -= costs[startIdx]
		included--
		startIdx++
	}
	if included == 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups)}
	}

	return msgs[groups[startIdx].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}

func opensWindow(m conversation.Message) bool {
	return m.Role == conversation.RoleUser && len(m.Results()) == 0
}
