package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/job-agent/internal/safety"
)

// WriteFile writes content to relPath under the sandbox, creating parent
// directories as needed, and returns the absolute path written.
func (s *Sandbox) WriteFile(relPath, content string) (string, error) {
	absPath, err := safety.ValidateWritePath(s.root, relPath)
	if err != nil {
		return "", err // propagate ToolError unchanged
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return "", err
	}
	return absPath, nil
}
