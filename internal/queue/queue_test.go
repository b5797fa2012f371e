package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3rg0n/concoct/internal/gradingproject"
	"github.com/3rg0n/concoct/internal/pipeline"
	"github.com/3rg0n/concoct/internal/toolrunner"
)

type fakeBackend struct{}

func (fakeBackend) Run(ctx context.Context, project *gradingproject.Project) (int, []byte, error) {
	return 0, nil, nil
}

func writeScript(t *testing.T, dir, name, stderrBody string, code int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\ncat <<'EOF' 1>&2\n" + stderrBody + "\nEOF\nexit " + string(rune('0'+code)) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeTaskStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(srcDir, 0o755))
	for _, name := range []string{"common.c", "test_main.c", "stub.c"} {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte("int main(void){return 0;}\n"), 0o644))
	}
	cfg := map[string]any{
		"name": "demo", "desc": "description.md", "libs": []string{},
		"src_dir": "src", "files": []string{"common.c"},
		"files_main": []string{}, "files_test": []string{"test_main.c"},
		"files_student": []string{"stub.c"},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644))
	return dir
}

func TestBuildAndCheckTaskWithSolutionReturnsReportJSON(t *testing.T) {
	taskPath := writeTaskStore(t)
	binDir := t.TempDir()
	cppcheck := writeScript(t, binDir, "fake-cppcheck", `<results version="2"><cppcheck version="2.13"/><errors></errors></results>`, 0)
	gcc := writeScript(t, binDir, "fake-gcc", "", 0)

	pl := &pipeline.GradingPipeline{
		StaticAnalyzer: toolrunner.StaticAnalyzerRunner{Binary: cppcheck},
		Compiler:       toolrunner.CompilerRunner{Binary: gcc},
		Backend:        fakeBackend{},
	}

	raw, err := BuildAndCheckTaskWithSolution(context.Background(), pl, taskPath, nil)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "cppcheck")
	assert.Contains(t, decoded, "gcc")
}
