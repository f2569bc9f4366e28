// Package safety confines exported files to a sandbox directory.
package safety

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	CodeOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead     = "ERR_DENIED_READ"
	CodeDeniedWrite    = "ERR_DENIED_WRITE"
)

// ToolError is a machine-readable error body for surfacing back to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// ResolveRoot makes root absolute and resolves symlinks where possible so
// boundary checks are reliable. A missing root is returned as-is.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", root, err)
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ValidateRelPath resolves relPath against absRoot and returns an absolute path
// inside the sandbox. It rejects absolute inputs, parent traversal and symlink
// escapes, and denies reads under .git/ and .agent/.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".agent") {
		return "", ToolError{Code: CodeDeniedRead, Message: "reads under .git/ or .agent/ are not allowed"}
	}
	return candidate, nil
}

// ValidateWritePath applies the read rules and additionally denies module
// files (go.mod, go.sum) at any depth.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".agent") {
		return "", ToolError{Code: CodeDeniedWrite, Message: "writes under .git/ or .agent/ are not allowed"}
	}
	if base := filepath.Base(rel); base == "go.mod" || base == "go.sum" {
		return "", ToolError{Code: CodeDeniedWrite, Message: "writes to go.mod or go.sum are not allowed"}
	}
	return candidate, nil
}

func resolve(absRoot, relPath string) (candidate, rel string, err error) {
	if filepath.IsAbs(relPath) {
		return "", "", ToolError{Code: CodeOutsideSandbox, Message: "absolute paths are not allowed"}
	}
	candidate = filepath.Join(absRoot, filepath.Clean(relPath))

	// Resolve the whole candidate if it exists, otherwise its parent, so an
	// escape through a symlinked directory is caught for new files too.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	rel, err = filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", ToolError{Code: CodeOutsideSandbox, Message: "requested path resolves outside the sandbox root"}
	}
	return candidate, filepath.ToSlash(rel), nil
}

func underDir(rel, dir string) bool {
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}
