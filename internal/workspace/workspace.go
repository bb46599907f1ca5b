// Package workspace manages per-session scratch directories.
//
// Every execution gets its own directory under a fixed scratch root,
// named by a freshly generated session ID. The directory holds the
// materialized source file for the sandbox mount and is removed again
// on every exit path once the execution reaches a terminal state.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coderoom/internal/language"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Manager creates and destroys session workspaces under a scratch root.
type Manager struct {
	root   string
	logger *zap.Logger
}

// NewManager returns a Manager rooted at root. An empty root falls back
// to a coderoom directory under the system temp dir.
func NewManager(root string, logger *zap.Logger) *Manager {
	if root == "" {
		root = filepath.Join(os.TempDir(), "coderoom")
	}
	return &Manager{root: root, logger: logger}
}

// NewSessionID returns a fresh unique session identifier. Uniqueness of
// these IDs is what keeps concurrent workspaces from colliding.
func NewSessionID() string {
	return uuid.NewString()
}

// Create makes the workspace directory for the given session, parents
// included. This is the one filesystem failure that propagates to the
// caller as an error rather than folding into an execution result.
func (m *Manager) Create(sessionID string) (string, error) {
	dir := filepath.Join(m.root, sessionID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return dir, nil
}

// Materialize writes the source text verbatim into the workspace using
// the extension registered for the language (generic fallback for
// unknown identifiers) and returns the file's basename. Code size is
// not bounded here; callers are expected to limit it upstream.
func (m *Manager) Materialize(dir, code, lang string) (string, error) {
	name := language.Resolve(lang).SourceFile()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code), filePerm); err != nil {
		return "", fmt.Errorf("write source file %s: %w", path, err)
	}
	return name, nil
}

// Remove deletes the workspace recursively. An already-absent directory
// is success, and failures are logged rather than returned: cleanup
// must never mask the execution result computed before it.
func (m *Manager) Remove(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		m.logger.Error("failed to remove workspace",
			zap.String("path", dir),
			zap.Error(err),
		)
	}
}

// Root returns the scratch root the manager owns.
func (m *Manager) Root() string {
	return m.root
}
