// Package runner drives the tool-use loop between a model and the tool registry.
//
// Invariants:
//   - Every assistant message that carries tool invocations is followed
//     directly by one user message holding exactly one result per invocation id,
//     including when a round is cut short.
//   - A tool failure becomes an error result for the model to read; it never
//     ends the loop.
//   - A turn makes at most MaxRounds model calls.
//
// Flow:
//
//	user(text) -> assistant(invocations) -> user(results) -> ... -> assistant(text)
package runner
