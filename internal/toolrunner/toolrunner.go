// Package toolrunner executes the grading pipeline's two host-side
// tools — cppcheck and gcc — against a staged source tree and turns
// their output into report.ReportParts. It is grounded on
// container.go's runValidationStage: build an exec.CommandContext,
// capture stdout/stderr into buffers, measure duration, never treat a
// non-zero exit as fatal (it is a StageFailure recorded in the
// Report, not an error returned to the caller).
package toolrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/3rg0n/concoct/internal/diagnostics"
	"github.com/3rg0n/concoct/internal/report"
)

// result bundles a finished host-tool invocation before it is folded
// into a report.ReportPart.
type result struct {
	exitCode int
	stdout   string
	stderr   string
	duration time.Duration
}

func run(ctx context.Context, dir, binary string, args ...string) (result, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return result{}, fmt.Errorf("toolrunner: run %s: %w", binary, err)
		}
	}

	return result{exitCode: exitCode, stdout: stdout.String(), stderr: stderr.String(), duration: duration}, nil
}

// StaticAnalyzerRunner drives cppcheck over a project's source files.
type StaticAnalyzerRunner struct {
	// Binary is the cppcheck executable name or path. Defaults to
	// "cppcheck" when empty.
	Binary string
}

// Run invokes cppcheck with the flags original_source/libConCoct's
// CppCheck.check used (suppress missing-system-include noise, enable
// every check category, request the --xml-version=2 schema ParseCppcheck
// expects), against srcDir with includeDirs on the search path.
func (r StaticAnalyzerRunner) Run(ctx context.Context, srcDir string, includeDirs, files []string) (report.ReportPart, error) {
	binary := r.Binary
	if binary == "" {
		binary = "cppcheck"
	}

	args := []string{"--suppress=missingIncludeSystem"}
	for _, inc := range includeDirs {
		args = append(args, "-I"+inc)
	}
	args = append(args, "--std=c99", "--enable=all", "--xml-version=2")
	args = append(args, files...)

	res, err := run(ctx, srcDir, binary, args...)
	if err != nil {
		return report.ReportPart{}, err
	}

	// cppcheck writes its XML report to stderr, not stdout.
	messages, err := diagnostics.ParseCppcheck([]byte(res.stderr))
	if err != nil {
		return report.ReportPart{}, err
	}
	return report.NewReportPart(report.SourceStaticAnalyzer, res.exitCode, messages), nil
}

// CompilerRunner drives gcc over a project's source files, producing a
// single executable.
type CompilerRunner struct {
	// Binary is the gcc executable name or path. Defaults to "gcc".
	Binary string
}

// Run invokes gcc with the flag order original_source/libConCoct's
// CompilerGcc.compile used: static linking, C99, no optimization, debug
// symbols, all warnings, one-diagnostic-per-line, include dirs, output
// target, input files, then libraries (cunit first, ahead of the task's
// extra libraries, so it resolves symbols pulled in by the student's own
// test files).
func (r CompilerRunner) Run(ctx context.Context, srcDir, target string, includeDirs, files, libs []string) (report.ReportPart, error) {
	binary := r.Binary
	if binary == "" {
		binary = "gcc"
	}

	args := []string{"-static", "-std=c99", "-O0", "-g", "-Wall", "-Wextra", "-fmessage-length=0"}
	for _, inc := range includeDirs {
		args = append(args, "-I"+inc)
	}
	args = append(args, "-o", filepath.Join(srcDir, target))
	args = append(args, files...)
	args = append(args, "-lcunit")
	for _, lib := range libs {
		args = append(args, "-l"+lib)
	}

	res, err := run(ctx, srcDir, binary, args...)
	if err != nil {
		return report.ReportPart{}, err
	}

	parser := diagnostics.NewCompilerParser()
	messages := parser.Parse(res.stderr)
	return report.NewReportPart(report.SourceCompiler, res.exitCode, messages), nil
}
