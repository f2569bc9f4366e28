// Package conversation models the message log of one agent session.
//
// A message carries ordered content blocks. Each block is exactly one of:
// text, a tool invocation requested by the model, or the result of running
// one invocation.
//
// Invariant:
//   - every tool invocation appended in an assistant message is answered by
//     exactly one tool result (matched by id) in the user message that
//     immediately follows it.
//
// Flow:
//
//	user(text) -> assistant(tool_invocation) -> user(tool_result) -> assistant(text)
package conversation
