package gradingproject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("int main(void) { return 0; }\n"), 0o644))
}

func TestTargetNameIsBase64LowerNoPad(t *testing.T) {
	target := TargetName("Sorting")
	assert.NotContains(t, target, "=")
	assert.Equal(t, target, lower(target))
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}

func TestNewRejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := New("demo", []string{filepath.Join(dir, "missing.c")}, nil, nil)
	assert.Error(t, err)
}

func TestNewAcceptsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "main.c")
	touch(t, f)

	p, err := New("demo", []string{f}, []string{dir}, []string{"m"})
	require.NoError(t, err)
	assert.Equal(t, TargetName("demo"), p.Target)
	assert.Equal(t, []string{dir}, p.Include)
}

func TestExecutablePathJoinsTempDirAndTarget(t *testing.T) {
	p := &Project{Target: "abc", TempDir: "/tmp/run1"}
	assert.Equal(t, "/tmp/run1/abc", p.ExecutablePath())
}
