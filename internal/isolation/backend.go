// Package isolation implements the two interchangeable sandboxes a
// compiled Project's test executable can run under: a disposable
// container (ContainerBackend) or a long-lived VM reached over SSH
// (VMBackend). Both satisfy Backend, replacing the original Python's
// duck-typed runner classes with one explicit interface (§9 redesign
// flag).
package isolation

import (
	"context"

	"github.com/3rg0n/concoct/internal/gradingproject"
)

// Backend runs a compiled Project's executable under isolation and
// recovers the CUnit results artifact it produced, if any. A non-nil
// error means the *backend itself* failed (could not connect, image
// build failed) — a test executable that ran and simply exited non-zero
// is reported via exitCode, not err.
type Backend interface {
	Run(ctx context.Context, project *gradingproject.Project) (exitCode int, artifact []byte, err error)
}
