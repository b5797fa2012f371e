package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docker/docker/client"

	"github.com/3rg0n/concoct/internal/cerrors"
)

// minDockerClientMajor and minDockerClientMinor are the version floor
// spec.md §4.5 requires (major >= 1, minor >= 2), checked against the
// imported Docker SDK's own ClientVersion() rather than by splitting the
// string on '-' then '.' the way the original's check_env did (§9's
// "prefer a library-provided version comparator").
const (
	minDockerClientMajor = 1
	minDockerClientMinor = 2
)

// BackendKind is the closed enumeration spec.md §9 asks for in place of
// the original's "'docker' vs anything else means VM" string check.
type BackendKind string

const (
	BackendContainer BackendKind = "docker"
	BackendVM        BackendKind = "vm"
)

// Probe verifies every prerequisite a GradingPipeline needs before it
// accepts work: the compiler and analyzer binaries, the selected
// backend's own prerequisite, a -lcunit link probe, and — unconditionally,
// since the Docker SDK is always imported — its client library version.
type Probe struct {
	CompilerBinary string
	CppcheckBinary string
	Backend        BackendKind

	// SSHHost, when Backend == BackendVM, must be non-empty; that check
	// replaces the local container runtime check. The host's
	// reachability is not probed.
	SSHHost string
}

// NewProbe returns a Probe with the conventional binary names.
func NewProbe(backend BackendKind, sshHost string) Probe {
	return Probe{CompilerBinary: "gcc", CppcheckBinary: "cppcheck", Backend: backend, SSHHost: sshHost}
}

// Run executes every check in order, returning the first failure as a
// cerrors.Error naming the offending prerequisite.
func (p Probe) Run(ctx context.Context) error {
	if err := checkBinary(ctx, p.CompilerBinary); err != nil {
		return err
	}
	if err := checkBinary(ctx, p.CppcheckBinary); err != nil {
		return err
	}
	if err := p.checkBackendPrerequisite(ctx); err != nil {
		return err
	}
	if err := checkCunitLinkable(ctx, p.CompilerBinary); err != nil {
		return err
	}
	if err := checkDockerClientVersion(); err != nil {
		return err
	}
	return nil
}

func checkBinary(ctx context.Context, name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return cerrors.NewMissingDependency(name, err)
	}
	cmd := exec.CommandContext(ctx, path, "--version")
	if err := cmd.Run(); err != nil {
		return cerrors.NewMissingDependency(name, err)
	}
	return nil
}

func (p Probe) checkBackendPrerequisite(ctx context.Context) error {
	switch p.Backend {
	case BackendContainer:
		if _, err := exec.LookPath("docker"); err != nil {
			if _, err := exec.LookPath("podman"); err != nil {
				return cerrors.NewMissingDependency("container runtime (docker or podman)", err)
			}
		}
		return nil
	case BackendVM:
		if p.SSHHost == "" {
			return cerrors.NewMissingDependency("vm backend ssh host", nil)
		}
		return nil
	default:
		return cerrors.NewInputValidation("unknown isolation backend: "+string(p.Backend), nil)
	}
}

// checkCunitLinkable compiles and links a one-line program against
// -lcunit in a scratch directory, the way the original's check_env
// confirmed the CUnit development package was installed.
func checkCunitLinkable(ctx context.Context, compiler string) error {
	dir, err := os.MkdirTemp("", "concoct-probe-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "probe.c")
	if err := os.WriteFile(src, []byte("int main(void){return 0;}\n"), 0o644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, compiler, src, "-lcunit", "-o", filepath.Join(dir, "probe"))
	if err := cmd.Run(); err != nil {
		return cerrors.NewMissingDependency("cunit development library (-lcunit)", err)
	}
	return nil
}

func checkDockerClientVersion() error {
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return cerrors.NewMissingDependency("docker client library", err)
	}
	defer cli.Close()

	major, minor, err := parseVersionComponents(cli.ClientVersion())
	if err != nil {
		return cerrors.NewMissingDependency("docker client library version", err)
	}
	if major < minDockerClientMajor || (major == minDockerClientMajor && minor < minDockerClientMinor) {
		return cerrors.NewMissingDependency("docker client library too old: "+cli.ClientVersion(), nil)
	}
	return nil
}

// parseVersionComponents extracts major.minor from a semver-ish string
// using strconv rather than the original's split-on-dash-then-dot, which
// a non-standard version string (e.g. one with a build suffix) would
// break.
func parseVersionComponents(version string) (major, minor int, err error) {
	parts := strings.SplitN(version, ".", 3)
	major, err = strconv.Atoi(digitsOnly(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	if len(parts) > 1 {
		minor, err = strconv.Atoi(digitsOnly(parts[1]))
		if err != nil {
			return 0, 0, err
		}
	}
	return major, minor, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
