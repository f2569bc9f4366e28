package conversation

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TextBlock is prose.
type TextBlock struct {
	Text string `json:"text"`
}

// ToolInvocation is a request from the model to run one named tool.
// Arguments hold the raw JSON object the model produced.
type ToolInvocation struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ArgumentMap decodes Arguments into a key/value mapping.
// Empty arguments decode to an empty map.
func (inv ToolInvocation) ArgumentMap() (map[string]any, error) {
	out := map[string]any{}
	if len(inv.Arguments) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(inv.Arguments, &out); err != nil {
		return nil, fmt.Errorf("decode arguments of %s: %w", inv.Name, err)
	}
	return out, nil
}

// ToolResult is the outcome of executing one ToolInvocation.
type ToolResult struct {
	InvocationID string `json:"invocation_id"`
	Payload      string `json:"payload"`
	IsError      bool   `json:"is_error,omitempty"`
}

// Block is a tagged union; exactly one field is set.
type Block struct {
	OfText       *TextBlock      `json:"text,omitempty"`
	OfInvocation *ToolInvocation `json:"tool_invocation,omitempty"`
	OfResult     *ToolResult     `json:"tool_result,omitempty"`
}

// BlockKind names the populated variant of a Block.
type BlockKind string

const (
	KindText       BlockKind = "text"
	KindInvocation BlockKind = "tool_invocation"
	KindResult     BlockKind = "tool_result"
	KindEmpty      BlockKind = ""
)

// Kind reports which variant is populated.
func (b Block) Kind() BlockKind {
	switch {
	case b.OfText != nil:
		return KindText
	case b.OfInvocation != nil:
		return KindInvocation
	case b.OfResult != nil:
		return KindResult
	}
	return KindEmpty
}

func Text(s string) Block { return Block{OfText: &TextBlock{Text: s}} }

func Invocation(id, name string, args json.RawMessage) Block {
	return Block{OfInvocation: &ToolInvocation{ID: id, Name: name, Arguments: args}}
}

func Result(invocationID, payload string, isError bool) Block {
	return Block{OfResult: &ToolResult{InvocationID: invocationID, Payload: payload, IsError: isError}}
}

// Message is one entry in the conversation log.
type Message struct {
	Role    Role    `json:"role"`
	Content []Block `json:"content"`
}

func UserText(s string) Message {
	return Message{Role: RoleUser, Content: []Block{Text(s)}}
}

func AssistantText(s string) Message {
	return Message{Role: RoleAssistant, Content: []Block{Text(s)}}
}

// Invocations returns the tool invocations of m in order.
func (m Message) Invocations() []ToolInvocation {
	var out []ToolInvocation
	for _, b := range m.Content {
		if b.OfInvocation != nil {
			out = append(out, *b.OfInvocation)
		}
	}
	return out
}

// Results returns the tool results of m in order.
func (m Message) Results() []ToolResult {
	var out []ToolResult
	for _, b := range m.Content {
		if b.OfResult != nil {
			out = append(out, *b.OfResult)
		}
	}
	return out
}

// FirstText returns the first text block of m.
func (m Message) FirstText() (string, bool) {
	for _, b := range m.Content {
		if b.OfText != nil {
			return b.OfText.Text, true
		}
	}
	return "", false
}

// clone copies the block slice and the blocks behind its pointers.
func (m Message) clone() Message {
	out := Message{Role: m.Role, Content: make([]Block, len(m.Content))}
	for i, b := range m.Content {
		switch {
		case b.OfText != nil:
			t := *b.OfText
			out.Content[i] = Block{OfText: &t}
		case b.OfInvocation != nil:
			inv := *b.OfInvocation
			inv.Arguments = append(json.RawMessage(nil), inv.Arguments...)
			out.Content[i] = Block{OfInvocation: &inv}
		case b.OfResult != nil:
			r := *b.OfResult
			out.Content[i] = Block{OfResult: &r}
		}
	}
	return out
}
