package metrics

import "github.com/petasbytes/job-agent/internal/conversation"

// History counts messages and tool traffic in a conversation.
type History struct {
	Messages     int
	User         int
	Assistant    int
	Invocations  int
	Results      int
	ErrorResults int
	TextBytes    int
}

func Summarize(msgs []conversation.Message) History {
	var h History
	for _, m := range msgs {
		h.Messages++
		if m.Role == conversation.RoleUser {
			h.User++
		} else {
			h.Assistant++
		}
		for _, b := range m.Content {
			switch b.Kind() {
			case conversation.KindText:
				h.TextBytes += len(b.OfText.Text)
			case conversation.KindInvocation:
				h.Invocations++
			case conversation.KindResult:
				h.Results++
				if b.OfResult.IsError {
					h.ErrorResults++
				}
			}
		}
	}
	return h
}

func (h History) Fields() map[string]any {
	return map[string]any{
		"messages":      h.Messages,
		"user":          h.User,
		"assistant":     h.Assistant,
		"invocations":   h.Invocations,
		"results":       h.Results,
		"error_results": h.ErrorResults,
		"text_bytes":    h.TextBytes,
	}
}
