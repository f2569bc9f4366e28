// Package memory persists a text-only transcript between CLI runs.
//
// Persistence model:
//   - Only prose is stored (role + text). Tool invocations and results are
//     transient and dropped when a transcript is built from history.
//   - An assistant message that only requested tools leaves no entry.
package memory
