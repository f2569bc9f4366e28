package runner

import "errors"

var (
	// ErrUnknownTool marks an invocation naming a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrToolExecution marks a handler that failed, panicked or timed out.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrProtocol marks a model reply the loop cannot act on.
	ErrProtocol = errors.New("protocol error")
	// ErrBudgetExceeded marks a turn stopped by its round or token budget.
	ErrBudgetExceeded = errors.New("budget exceeded")
)
