// Package queue is the thin adapter an external asynchronous job-queue
// worker calls: one task taking a task store path and a solution file
// list, returning the graded Report's JSON form. No native pipeline
// objects cross this boundary, only JSON bytes, per spec.md §6.
package queue

import (
	"context"
	"encoding/json"

	"github.com/3rg0n/concoct/internal/gradingproject"
	"github.com/3rg0n/concoct/internal/pipeline"
)

// BuildAndCheckTaskWithSolution loads the Task at taskStorePath, builds
// its test Project against solutionFiles (or the task's placeholder
// files if solutionFiles is empty), runs it through pl, and returns the
// Report's JSON form.
func BuildAndCheckTaskWithSolution(ctx context.Context, pl *pipeline.GradingPipeline, taskStorePath string, solutionFiles []string) (json.RawMessage, error) {
	task, err := gradingproject.Load(taskStorePath)
	if err != nil {
		return nil, err
	}

	var solution *gradingproject.Solution
	if len(solutionFiles) > 0 {
		solution = gradingproject.NewSolution(solutionFiles)
	}

	project, err := task.TestProject(solution)
	if err != nil {
		return nil, err
	}

	r, err := pl.CheckProject(ctx, project)
	if err != nil {
		return nil, err
	}

	data, err := r.ToJSON()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
