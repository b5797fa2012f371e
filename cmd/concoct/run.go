package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh"

	"github.com/3rg0n/concoct/internal/cerrors"
	"github.com/3rg0n/concoct/internal/clog"
	"github.com/3rg0n/concoct/internal/editorproject"
	"github.com/3rg0n/concoct/internal/gradingproject"
	"github.com/3rg0n/concoct/internal/isolation"
	"github.com/3rg0n/concoct/internal/pipeline"
)

type runOptions struct {
	taskPath    string
	unittest    bool
	project     bool
	solution    string
	backendFlag string
	zipName     string
}

// run performs the CLI's requested actions: the editor-project export,
// the grading run, or both (export first). Exit code is 0 on any
// completed grading run, even one that reports a failing solution — the
// report carries that outcome. Non-zero results from missing
// prerequisites or inputs that can't be loaded, and also from an
// isolation backend failure or an export or report that cannot be
// written.
func run(opts runOptions) error {
	logger := clog.New("concoct")

	task, err := gradingproject.Load(opts.taskPath)
	if err != nil {
		return err
	}

	var solution *gradingproject.Solution
	if opts.solution != "" {
		solution = gradingproject.NewSolution([]string{opts.solution})
	}

	if opts.project {
		testProject, err := task.TestProject(solution)
		if err != nil {
			return err
		}
		if err := editorproject.Export(testProject, task.DescriptionPath, opts.zipName); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", opts.zipName)
	}

	if !opts.unittest {
		return nil
	}

	backendKind := pipeline.BackendKind(opts.backendFlag)
	backend, err := newBackend(backendKind)
	if err != nil {
		return err
	}

	probe := pipeline.NewProbe(backendKind, viper.GetString("vm_host"))
	pl, err := pipeline.New(probe, backend, logger)
	if err != nil {
		return err
	}

	testProject, err := task.TestProject(solution)
	if err != nil {
		return err
	}

	r, err := pl.CheckProject(context.Background(), testProject)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, formatReportSummary(r))

	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// newBackend resolves the closed {container, vm} enumeration spec.md §9
// asks for, failing loudly on anything else rather than defaulting
// unrecognized values to VM the way the original's string check did.
func newBackend(kind pipeline.BackendKind) (isolation.Backend, error) {
	switch kind {
	case pipeline.BackendContainer:
		cli, err := dockerClientFromEnv()
		if err != nil {
			return nil, err
		}
		return isolation.NewContainerBackend(cli), nil
	case pipeline.BackendVM:
		host := viper.GetString("vm_host")
		user := viper.GetString("vm_user")
		keyPath := viper.GetString("vm_key")
		remotePath := viper.GetString("vm_remote_path")
		vmName := viper.GetString("vm_name")
		if host == "" || user == "" || keyPath == "" {
			return nil, cerrors.NewMissingDependency("vm backend configuration (CONCOCT_VM_HOST/USER/KEY)", nil)
		}
		auth, err := publicKeyAuth(keyPath)
		if err != nil {
			return nil, err
		}
		return isolation.NewVMBackend(host, 22, user, auth, remotePath, vmName), nil
	default:
		return nil, cerrors.NewInputValidation("unknown isolation backend: "+string(kind), nil)
	}
}

func publicKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, cerrors.NewMissingDependency("vm backend private key", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, cerrors.NewMissingDependency("vm backend private key (unparsable)", err)
	}
	return ssh.PublicKeys(signer), nil
}
