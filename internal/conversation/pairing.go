package conversation

import "fmt"

// PairingError describes a break of the invocation/result matching rule.
type PairingError struct {
	Index  int
	Reason string
	IDs    []string
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("message %d: %s %v", e.Index, e.Reason, e.IDs)
}

// CheckPairing verifies that every assistant invocation is answered by exactly
// one result in the next user message and that no result is orphaned.
// A trailing assistant message with open invocations is reported as well.
func CheckPairing(msgs []Message) error {
	for i, m := range msgs {
		switch m.Role {
		case RoleAssistant:
			invs := m.Invocations()
			if len(invs) == 0 {
				continue
			}
			want := make(map[string]struct{}, len(invs))
			for _, inv := range invs {
				want[inv.ID] = struct{}{}
			}
			if i+1 >= len(msgs) || msgs[i+1].Role != RoleUser {
				return &PairingError{Index: i, Reason: "invocations without results", IDs: keys(want)}
			}
			seen := map[string]int{}
			var extra []string
			for _, r := range msgs[i+1].Results() {
				if _, ok := want[r.InvocationID]; !ok {
					extra = append(extra, r.InvocationID)
					continue
				}
				seen[r.InvocationID]++
			}
			if len(extra) > 0 {
				return &PairingError{Index: i + 1, Reason: "results for unknown invocations", IDs: extra}
			}
			var missing, dup []string
			for id := range want {
				switch seen[id] {
				case 0:
					missing = append(missing, id)
				case 1:
				default:
					dup = append(dup, id)
				}
			}
			if len(missing) > 0 {
				return &PairingError{Index: i + 1, Reason: "missing results", IDs: missing}
			}
			if len(dup) > 0 {
				return &PairingError{Index: i + 1, Reason: "duplicate results", IDs: dup}
			}
		case RoleUser:
			if len(m.Results()) == 0 {
				continue
			}
			if i == 0 || len(msgs[i-1].Invocations()) == 0 {
				return &PairingError{Index: i, Reason: "results without a preceding invocation message"}
			}
		}
	}
	return nil
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
