// Package pipeline orchestrates the three-stage grading run: static
// analysis, then compile, then isolated test execution, stopping early
// the moment any stage fails, grounded on the teacher's
// ValidateCodeWithProgress staged-run loop.
package pipeline

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/3rg0n/concoct/internal/diagnostics"
	"github.com/3rg0n/concoct/internal/gradingproject"
	"github.com/3rg0n/concoct/internal/isolation"
	"github.com/3rg0n/concoct/internal/report"
	"github.com/3rg0n/concoct/internal/toolrunner"
)

// GradingPipeline wires the two tool runners and an isolation backend
// together. Construct with New, which runs the environment probe once
// up front so every later CheckProject call can assume its
// prerequisites hold.
type GradingPipeline struct {
	StaticAnalyzer toolrunner.StaticAnalyzerRunner
	Compiler       toolrunner.CompilerRunner
	Backend        isolation.Backend
	Logger         *log.Logger
}

// New runs the environment probe and returns a ready GradingPipeline, or
// the first error the probe found.
func New(probe Probe, backend isolation.Backend, logger *log.Logger) (*GradingPipeline, error) {
	if err := probe.Run(context.Background()); err != nil {
		return nil, err
	}
	return &GradingPipeline{
		StaticAnalyzer: toolrunner.StaticAnalyzerRunner{Binary: probe.CppcheckBinary},
		Compiler:       toolrunner.CompilerRunner{Binary: probe.CompilerBinary},
		Backend:        backend,
		Logger:         logger,
	}, nil
}

// CheckProject runs static analysis, then compile, then the isolated
// test executable, short-circuiting after the first stage that fails.
// The scratch directory is created here and always removed before
// returning, mirroring the pipeline-owned tempdir lifecycle spec.md §9
// asks for in place of a destructor-time finalizer.
func (g *GradingPipeline) CheckProject(ctx context.Context, project *gradingproject.Project) (*report.Report, error) {
	tempDir, err := os.MkdirTemp("", "concoct-run-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)
	project.TempDir = tempDir

	r := report.New()

	analysisPart, err := g.StaticAnalyzer.Run(ctx, project.Include[0], project.Include, project.Files)
	if err != nil {
		return nil, err
	}
	r.Append(analysisPart)
	if !analysisPart.Succeeded() {
		g.logf("static analysis failed (exit %d), skipping compile and test", analysisPart.ReturnCode)
		return r, nil
	}

	compilePart, err := g.Compiler.Run(ctx, tempDir, project.Target, project.Include, project.Files, project.Libs)
	if err != nil {
		return nil, err
	}
	r.Append(compilePart)
	if !compilePart.Succeeded() {
		g.logf("compile failed (exit %d), skipping test execution", compilePart.ReturnCode)
		return r, nil
	}

	exitCode, artifact, err := g.Backend.Run(ctx, project)
	if err != nil {
		return nil, err
	}
	if exitCode != 0 || len(artifact) == 0 {
		r.Append(report.NewUnitTestReportPart(exitCode, nil, nil))
		return r, nil
	}

	result, err := diagnostics.ParseCunit(artifact)
	if err != nil {
		// ArtifactMissing/ParseError surfaces as an empty-messages
		// ReportPart, not a fatal pipeline error (spec.md §7).
		r.Append(report.NewUnitTestReportPart(exitCode, nil, nil))
		return r, nil
	}
	r.Append(report.NewUnitTestReportPart(exitCode, result.Messages, result.Tests))
	return r, nil
}

func (g *GradingPipeline) logf(format string, args ...any) {
	if g.Logger != nil {
		g.Logger.Infof(format, args...)
	}
}
