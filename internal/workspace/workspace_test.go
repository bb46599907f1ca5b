package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(t.TempDir(), zap.NewNop())
}

func TestCreateMakesSessionDirectory(t *testing.T) {
	m := newTestManager(t)

	id := NewSessionID()
	dir, err := m.Create(id)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(m.Root(), id), dir)
}

func TestCreateDistinctSessionsGetDistinctDirs(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Create(NewSessionID())
	require.NoError(t, err)
	b, err := m.Create(NewSessionID())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestMaterializeWritesSourceVerbatim(t *testing.T) {
	m := newTestManager(t)
	dir, err := m.Create(NewSessionID())
	require.NoError(t, err)

	code := "print('hello')\n# weird bytes: \x00\xff ok\n"
	name, err := m.Materialize(dir, code, "python")
	require.NoError(t, err)
	assert.Equal(t, "code.py", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, code, string(data))
}

func TestMaterializeUnknownLanguageUsesGenericExtension(t *testing.T) {
	m := newTestManager(t)
	dir, err := m.Create(NewSessionID())
	require.NoError(t, err)

	name, err := m.Materialize(dir, "echo hi", "klingon")
	require.NoError(t, err)
	assert.Equal(t, "code.txt", name)
}

func TestRemoveDeletesWorkspace(t *testing.T) {
	m := newTestManager(t)
	dir, err := m.Create(NewSessionID())
	require.NoError(t, err)
	_, err = m.Materialize(dir, "x = 1", "python")
	require.NoError(t, err)

	m.Remove(dir)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	dir, err := m.Create(NewSessionID())
	require.NoError(t, err)

	m.Remove(dir)
	// Absent directory and empty path are both no-ops, not failures.
	m.Remove(dir)
	m.Remove("")
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSessionID()
		require.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}
