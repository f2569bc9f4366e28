// Package fsops performs file operations confined to a sandbox directory.
package fsops

import (
	"fmt"
	"os"

	"github.com/petasbytes/job-agent/internal/safety"
)

// Sandbox is a directory that file operations may not escape.
type Sandbox struct {
	root string
}

// NewSandbox creates root if needed and resolves it to an absolute path.
func NewSandbox(root string) (*Sandbox, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("sandbox root: %w", err)
	}
	abs, err := safety.ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	return &Sandbox{root: abs}, nil
}

func (s *Sandbox) Root() string { return s.root }
