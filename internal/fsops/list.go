package fsops

import (
	"os"

	"github.com/petasbytes/job-agent/internal/safety"
)

// List returns the non-recursive entries of relDir, with directories
// suffixed by "/". A missing directory lists as empty.
func (s *Sandbox) List(relDir string) ([]string, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := safety.ValidateRelPath(s.root, relDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}
