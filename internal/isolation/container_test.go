package isolation

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstRegularFileFromTarReturnsContents(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	body := []byte("<CUNIT_TEST_RUN_REPORT/>")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "CUnitAutomated-Results.xml", Mode: 0o644, Size: int64(len(body))}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	got, err := firstRegularFileFromTar(&buf)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFirstRegularFileFromTarEmptyStreamIsError(t *testing.T) {
	_, err := firstRegularFileFromTar(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuildContextTarContainsDockerfileAndExecutable(t *testing.T) {
	dir := t.TempDir()
	exePath := filepath.Join(dir, "solution")
	require.NoError(t, os.WriteFile(exePath, []byte("\x7fELF-fake-binary"), 0o755))

	r, err := buildContextTar(exePath, "solution")
	require.NoError(t, err)

	tr := tar.NewReader(r)
	names := map[string]bool{}
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names[hdr.Name] = true
	}
	assert.True(t, names["Dockerfile"])
	assert.True(t, names["solution"])
}
