package isolation

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-units"

	"github.com/3rg0n/concoct/internal/cerrors"
	"github.com/3rg0n/concoct/internal/gradingproject"
)

// dockerfileTemplate starts from an empty base image, copies the built
// executable in, and runs it — the minimal image the original's
// DockerRunner.build_image assembled from a Dockerfile string template.
const dockerfileTemplate = `FROM scratch
COPY %s /run-tests
ENTRYPOINT ["/run-tests"]
`

const artifactPath = "/CUnitAutomated-Results.xml"

// buildResources caps the image build the way the original's
// docker-py Client.build(container_limits=...) did: a few megabytes of
// memory, no swap headroom, a relative CPU share weight of 10, a pinned
// CPU set.
var buildResources = container.Resources{
	Memory:     4 * units.MiB,
	MemorySwap: 4 * units.MiB,
	CPUShares:  10,
	CpusetCpus: "0",
}

// ContainerBackend runs a Project's executable inside a disposable,
// resource-capped container, using the Docker SDK directly rather than
// shelling to a CLI binary (higher-fidelity port of the original's
// docker-py Client usage than the teacher's exec.Command approach).
type ContainerBackend struct {
	Client *client.Client
	// WaitTimeout bounds how long the container may run before it is
	// killed and reported as exit code -1 with no artifact. Defaults to 2 seconds,
	// matching the original's default test-run budget.
	WaitTimeout time.Duration
}

// NewContainerBackend wraps an already-constructed Docker client (built
// from the same Docker SDK the environment probe imports for its version
// gate, so the dependency is never a throwaway import).
func NewContainerBackend(cli *client.Client) *ContainerBackend {
	return &ContainerBackend{Client: cli, WaitTimeout: 2 * time.Second}
}

// Run builds a throwaway image around project's executable, runs it
// under the resource caps, recovers the CUnit XML artifact, and removes
// both container and image on every exit path (state machine
// idle->built->started->waited->extracted->cleaned, collapsed here into
// defers so cleanup always happens even on an early return).
func (b *ContainerBackend) Run(ctx context.Context, project *gradingproject.Project) (int, []byte, error) {
	exePath := project.ExecutablePath()
	if _, err := os.Stat(exePath); err != nil {
		return 0, nil, cerrors.NewArtifactMissing(exePath)
	}

	imageTag := "autotest/" + project.Target

	buildCtx, err := buildContextTar(exePath, filepath.Base(exePath))
	if err != nil {
		return 0, nil, cerrors.NewInfrastructure("could not assemble build context", err)
	}

	buildResp, err := b.Client.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:        []string{imageTag},
		Remove:      true,
		Memory:      buildResources.Memory,
		MemorySwap:  buildResources.MemorySwap,
		CPUShares:   buildResources.CPUShares,
		CPUSetCPUs:  buildResources.CpusetCpus,
		Dockerfile:  "Dockerfile",
		PullParent:  false,
		NetworkMode: "none",
	})
	if err != nil {
		return 0, nil, cerrors.NewInfrastructure("image build failed", err)
	}
	io.Copy(io.Discard, buildResp.Body)
	buildResp.Body.Close()

	defer func() {
		_, _ = b.Client.ImageRemove(context.Background(), imageTag, image.RemoveOptions{Force: true})
	}()

	created, err := b.Client.ContainerCreate(ctx, &container.Config{
		Image:           imageTag,
		NetworkDisabled: true,
	}, &container.HostConfig{
		Resources: container.Resources{
			Memory:     buildResources.Memory,
			MemorySwap: buildResources.MemorySwap,
			CPUShares:  buildResources.CPUShares,
			CpusetCpus: buildResources.CpusetCpus,
		},
		NetworkMode: "none",
		AutoRemove:  false,
	}, nil, nil, "")
	if err != nil {
		return 0, nil, cerrors.NewInfrastructure("container create failed", err)
	}

	defer func() {
		_ = b.Client.ContainerRemove(context.Background(), created.ID, container.RemoveOptions{Force: true})
	}()

	if err := b.Client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return 0, nil, cerrors.NewInfrastructure("container start failed", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.WaitTimeout)
	defer cancel()

	statusCh, errCh := b.Client.ContainerWait(waitCtx, created.ID, container.WaitConditionNotRunning)
	var exitCode int
	select {
	case err := <-errCh:
		if err != nil {
			_ = b.Client.ContainerKill(context.Background(), created.ID, "KILL")
			return -1, nil, nil
		}
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
	case <-waitCtx.Done():
		_ = b.Client.ContainerKill(context.Background(), created.ID, "KILL")
		return -1, nil, nil
	}

	artifact, err := b.extractArtifact(created.ID)
	if err != nil {
		// A missing artifact is always reported as a failed run: the
		// container's own exit code can be 0 even when the student
		// program never produced a result, and the caller must not
		// mistake that for a passing test.
		return -1, nil, nil
	}
	return exitCode, artifact, nil
}

// extractArtifact pulls artifactPath out of the container via the tar
// stream CopyFromContainer returns, unpacking the single entry we care
// about with archive/tar.
func (b *ContainerBackend) extractArtifact(containerID string) ([]byte, error) {
	rc, _, err := b.Client.CopyFromContainer(context.Background(), containerID, artifactPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return firstRegularFileFromTar(rc)
}

// firstRegularFileFromTar returns the contents of the first regular
// file found in a tar stream. Split out from extractArtifact so the
// unpacking logic is testable without a running container.
func firstRegularFileFromTar(r io.Reader) ([]byte, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("isolation: %s not found in container archive", artifactPath)
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tr); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// buildContextTar wraps a single file into the tar stream ImageBuild
// expects as its build context, alongside a generated Dockerfile.
func buildContextTar(hostPath, nameInImage string) (io.Reader, error) {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	dockerfile := fmt.Sprintf(dockerfileTemplate, nameInImage)
	if err := tw.WriteHeader(&tar.Header{Name: "Dockerfile", Mode: 0o644, Size: int64(len(dockerfile))}); err != nil {
		return nil, err
	}
	if _, err := tw.Write([]byte(dockerfile)); err != nil {
		return nil, err
	}

	if err := tw.WriteHeader(&tar.Header{Name: nameInImage, Mode: 0o755, Size: int64(len(data))}); err != nil {
		return nil, err
	}
	if _, err := tw.Write(data); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}
