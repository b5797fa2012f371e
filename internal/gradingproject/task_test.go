package gradingproject

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTask(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(srcDir, 0o755))

	for _, name := range []string{"common.c", "main.c", "test_main.c", "stub.c"} {
		touch(t, filepath.Join(srcDir, name))
	}

	cfg := taskConfig{
		Name:         "sorting",
		Desc:         "description.md",
		Libs:         []string{"m"},
		SrcDir:       "src",
		Files:        []string{"common.c"},
		FilesMain:    []string{"main.c"},
		FilesTest:    []string{"test_main.c"},
		FilesStudent: []string{"stub.c"},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644))
	return dir
}

func TestLoadResolvesFilesRelativeToSourceRoot(t *testing.T) {
	taskPath := writeTask(t)
	task, err := Load(taskPath)
	require.NoError(t, err)

	assert.Equal(t, "sorting", task.Name)
	assert.Equal(t, filepath.Join(taskPath, "src"), task.SourceRoot)
	assert.Equal(t, []string{filepath.Join(taskPath, "src", "common.c")}, task.Files)
}

func TestMainProjectUsesStudentFilesWhenNoSolution(t *testing.T) {
	taskPath := writeTask(t)
	task, err := Load(taskPath)
	require.NoError(t, err)

	p, err := task.MainProject(nil)
	require.NoError(t, err)
	assert.Contains(t, p.Files, filepath.Join(taskPath, "src", "stub.c"))
	assert.Contains(t, p.Files, filepath.Join(taskPath, "src", "main.c"))
}

func TestTestProjectUsesSolutionFilesWhenSupplied(t *testing.T) {
	taskPath := writeTask(t)
	task, err := Load(taskPath)
	require.NoError(t, err)

	solutionFile := filepath.Join(taskPath, "src", "common.c")
	p, err := task.TestProject(NewSolution([]string{solutionFile}))
	require.NoError(t, err)

	assert.Contains(t, p.Files, filepath.Join(taskPath, "src", "test_main.c"))
	assert.Contains(t, p.Files, solutionFile)
	assert.NotContains(t, p.Files, filepath.Join(taskPath, "src", "stub.c"))
}

func TestLoadFailsOnMissingConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
