package isolation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/3rg0n/concoct/internal/cerrors"
	"github.com/3rg0n/concoct/internal/gradingproject"
)

// VMBackend runs a Project's executable on a long-lived VM reached over
// SSH, grounded on original_source/libConCoct/unittest.py's VMRunner
// (paramiko SSHClient + SFTPClient) and VirtualBoxControl (a hypervisor
// CLI wrapper that ensures the VM is powered on before connecting).
type VMBackend struct {
	Host       string
	Port       int
	User       string
	AuthMethod ssh.AuthMethod

	// RemotePath is the shared base directory each run gets a fresh
	// subdirectory under (RemotePath/<target>-<scratch dir name>),
	// resolving the shared working-directory race the original's single
	// RemotePath had.
	RemotePath string

	// HypervisorCLI is the VM power-on binary, default "VBoxManage",
	// ported from VirtualBoxControl's hard-coded "VBoxManage" calls.
	HypervisorCLI string
	VMName        string

	// RunTimeout bounds the remote test run, enforced with a remote
	// `timeout <seconds>s` wrapper (not client-side cancellation — a
	// torn-down SSH session does not kill the remote process).
	RunTimeout time.Duration
}

// NewVMBackend returns a VMBackend with the original's defaults: a
// 10 second run budget and "VBoxManage" as the hypervisor CLI.
func NewVMBackend(host string, port int, user string, auth ssh.AuthMethod, remotePath, vmName string) *VMBackend {
	return &VMBackend{
		Host:          host,
		Port:          port,
		User:          user,
		AuthMethod:    auth,
		RemotePath:    remotePath,
		HypervisorCLI: "VBoxManage",
		VMName:        vmName,
		RunTimeout:    10 * time.Second,
	}
}

// EnsureRunning powers the VM on if it is not already, via the
// hypervisor CLI, mirroring VirtualBoxControl.start_vm's
// "VBoxManage startvm <name> --type headless" with a tolerant check for
// "already running".
func (b *VMBackend) EnsureRunning(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, b.HypervisorCLI, "startvm", b.VMName, "--type", "headless")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if bytes.Contains(stderr.Bytes(), []byte("already")) {
			return nil
		}
		return cerrors.NewInfrastructure("could not start vm "+b.VMName, err)
	}
	return nil
}

func (b *VMBackend) dial() (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            b.User,
		Auth:            []ssh.AuthMethod{b.AuthMethod},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
	addr := fmt.Sprintf("%s:%d", b.Host, b.Port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, cerrors.NewInfrastructure("ssh dial "+addr+" failed", err)
	}
	return client, nil
}

// Run uploads the project's executable to a per-run remote
// subdirectory, runs it under a remote timeout wrapper, downloads the
// CUnit XML artifact if one was produced, and recursively removes the
// remote subdirectory on every exit path.
func (b *VMBackend) Run(ctx context.Context, project *gradingproject.Project) (int, []byte, error) {
	if err := b.EnsureRunning(ctx); err != nil {
		return 0, nil, err
	}

	sshClient, err := b.dial()
	if err != nil {
		return 0, nil, err
	}
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return 0, nil, cerrors.NewInfrastructure("sftp handshake failed", err)
	}
	defer sftpClient.Close()

	// The scratch directory name is unique per grading run, so concurrent
	// runs of the same task never share a remote directory.
	runDir := path.Join(b.RemotePath, project.Target+"-"+filepath.Base(project.TempDir))
	defer removeRemoteDir(sftpClient, runDir)

	if err := sftpClient.MkdirAll(runDir); err != nil {
		return 0, nil, cerrors.NewInfrastructure("could not create remote run directory", err)
	}

	remoteExe := path.Join(runDir, project.Target)
	if err := uploadExecutable(sftpClient, project.ExecutablePath(), remoteExe); err != nil {
		return 0, nil, err
	}

	exitCode, err := b.runRemote(ctx, sshClient, runDir, remoteExe)
	if err != nil {
		return 0, nil, err
	}

	artifact, err := downloadIfPresent(sftpClient, path.Join(runDir, "CUnitAutomated-Results.xml"))
	if err != nil {
		return exitCode, nil, cerrors.NewInfrastructure("could not download test artifact", err)
	}
	return exitCode, artifact, nil
}

func uploadExecutable(sftpClient *sftp.Client, localPath, remotePath string) error {
	local, err := os.Open(localPath)
	if err != nil {
		return cerrors.NewArtifactMissing(localPath)
	}
	defer local.Close()

	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return cerrors.NewInfrastructure("could not create remote file "+remotePath, err)
	}
	defer remote.Close()

	if _, err := io.Copy(remote, local); err != nil {
		return cerrors.NewInfrastructure("upload failed for "+remotePath, err)
	}
	return sftpClient.Chmod(remotePath, 0o755)
}

// runRemote executes `cd <runDir>; timeout <n>s <exe>` over one SSH
// session, the original's exact `'cd {}; timeout {}s {}'` wrapper.
func (b *VMBackend) runRemote(ctx context.Context, client *ssh.Client, runDir, remoteExe string) (int, error) {
	session, err := client.NewSession()
	if err != nil {
		return 0, cerrors.NewInfrastructure("could not open ssh session", err)
	}
	defer session.Close()

	err = session.Run(remoteRunCommand(runDir, remoteExe, b.RunTimeout))
	if err == nil {
		return 0, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitStatus() == 124 {
			return -1, nil
		}
		return exitErr.ExitStatus(), nil
	}
	return 0, cerrors.NewInfrastructure("remote command failed", err)
}

// remoteRunCommand builds the shell command the original wrapped every
// remote test run in: 'cd {}; timeout {}s {}'. A sub-second timeout is
// rounded up to 1 second since `timeout` takes whole seconds.
func remoteRunCommand(runDir, remoteExe string, timeout time.Duration) string {
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("cd %s; timeout %ds %s", runDir, seconds, remoteExe)
}

func downloadIfPresent(sftpClient *sftp.Client, remotePath string) ([]byte, error) {
	f, err := sftpClient.Open(remotePath)
	if err != nil {
		// No artifact is not an infrastructure failure: the student
		// program may simply never have produced one.
		return nil, nil
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// removeRemoteDir recursively deletes runDir, tolerating a
// not-found error the way the original's shutil.rmtree(ignore_errors=True)
// silently absorbed a missing directory.
func removeRemoteDir(sftpClient *sftp.Client, runDir string) {
	walker := sftpClient.Walk(runDir)
	var files, dirs []string
	for walker.Step() {
		if walker.Err() != nil {
			return
		}
		if walker.Stat().IsDir() {
			dirs = append(dirs, walker.Path())
		} else {
			files = append(files, walker.Path())
		}
	}
	for _, f := range files {
		_ = sftpClient.Remove(f)
	}
	// Walk visits parents before children, so deleting in reverse order
	// empties each directory before it is removed.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = sftpClient.RemoveDirectory(dirs[i])
	}
}
