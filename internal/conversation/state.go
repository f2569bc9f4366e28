package conversation

// State is the ordered message log of one session. It is not safe for
// concurrent use; the owning agent serializes access.
type State struct {
	msgs []Message
}

func NewState() *State { return &State{} }

// Append adds m at the end of the log.
func (s *State) Append(m Message) {
	s.msgs = append(s.msgs, m.clone())
}

// Snapshot returns a copy of the log, oldest first. Mutating the copy does
// not affect the state.
func (s *State) Snapshot() []Message {
	out := make([]Message, len(s.msgs))
	for i, m := range s.msgs {
		out[i] = m.clone()
	}
	return out
}

// Len reports the number of messages.
func (s *State) Len() int { return len(s.msgs) }

// Last returns the newest message.
func (s *State) Last() (Message, bool) {
	if len(s.msgs) == 0 {
		return Message{}, false
	}
	return s.msgs[len(s.msgs)-1].clone(), true
}

// Reset empties the log.
func (s *State) Reset() { s.msgs = nil }
