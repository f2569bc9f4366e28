package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/petasbytes/job-agent/internal/conversation"
)

// Message is a persisted chat entry.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

// LoadConversation reads a transcript. A missing file is an empty transcript.
func LoadConversation(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return msgs, nil
}

// SaveConversation writes msgs, creating the parent directory if needed.
func SaveConversation(path string, msgs []Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// FromHistory keeps the text of each message, joining multiple text blocks
// with a newline. Messages without text are skipped.
func FromHistory(history []conversation.Message) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		var parts []string
		for _, b := range m.Content {
			if b.OfText != nil && strings.TrimSpace(b.OfText.Text) != "" {
				parts = append(parts, b.OfText.Text)
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, Message{Role: string(m.Role), Text: strings.Join(parts, "\n")})
	}
	return out
}

// ToHistory rebuilds conversation messages from a transcript. Consecutive
// entries with the same role are merged so roles alternate.
func ToHistory(msgs []Message) ([]conversation.Message, error) {
	out := make([]conversation.Message, 0, len(msgs))
	for i, m := range msgs {
		role := conversation.Role(m.Role)
		if role != conversation.RoleUser && role != conversation.RoleAssistant {
			return nil, fmt.Errorf("entry %d: unknown role %q", i, m.Role)
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, conversation.Text(m.Text))
			continue
		}
		out = append(out, conversation.Message{Role: role, Content: []conversation.Block{conversation.Text(m.Text)}})
	}
	return out, nil
}
