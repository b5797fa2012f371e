package editorproject

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3rg0n/concoct/internal/gradingproject"
)

func TestExportPacksSourcesHeadersAndDescription(t *testing.T) {
	dir := t.TempDir()
	mainC := filepath.Join(dir, "main.c")
	headerH := filepath.Join(dir, "util.h")
	descMD := filepath.Join(dir, "description.md")

	require.NoError(t, os.WriteFile(mainC, []byte("int main(void){return 0;}\n"), 0o644))
	require.NoError(t, os.WriteFile(headerH, []byte("#pragma once\n"), 0o644))
	require.NoError(t, os.WriteFile(descMD, []byte("# Task\n"), 0o644))

	project := &gradingproject.Project{
		Name:    "demo",
		Target:  gradingproject.TargetName("demo"),
		Files:   []string{mainC},
		Include: []string{dir},
	}

	zipPath := filepath.Join(dir, "out.zip")
	require.NoError(t, Export(project, descMD, zipPath))

	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	assert.True(t, names["main.c"])
	assert.True(t, names["util.h"])
	assert.True(t, names["description.md"])
	assert.True(t, names["demo.cbp"])
	assert.True(t, names["demo.layout"])
}
