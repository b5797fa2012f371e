// Package gradingproject implements the Project/Task/Solution
// composition: Project is the buildable unit the pipeline compiles and
// runs, Task is the per-exercise configuration loaded from config.json,
// and Solution is the student-supplied file list. Task fabricates
// Projects through factories; Project never references the Task that
// built it, keeping the relation one-way (the §9 redesign flag breaking
// the original's Task<->Project cycle).
package gradingproject

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/3rg0n/concoct/internal/cerrors"
)

// Project is the buildable unit: an ordered file list, include search
// path, extra libraries, and a derived container-safe target name.
type Project struct {
	Name    string
	Target  string
	Files   []string
	Include []string
	Libs    []string
	TempDir string
}

// New validates fileList (every path must exist) and derives Target from
// name, per spec.md's "every path in file_list must exist at
// construction; constructor fails otherwise".
func New(name string, fileList, include, libs []string) (*Project, error) {
	for _, f := range fileList {
		if _, err := os.Stat(f); err != nil {
			return nil, cerrors.NewInputValidation("project file does not exist: "+f, err)
		}
	}
	return &Project{
		Name:    name,
		Target:  TargetName(name),
		Files:   fileList,
		Include: include,
		Libs:    libs,
	}, nil
}

// ExecutablePath is where the compiler must place the project's built
// executable: TempDir/Target.
func (p *Project) ExecutablePath() string {
	return filepath.Join(p.TempDir, p.Target)
}

// TargetName derives a container-repository-safe name from a project
// name: base64-encode the UTF-8 bytes, lower-case the result, and strip
// '=' padding. Not injective over arbitrary names (case collisions are
// possible); acceptable only because Task-supplied project names come
// from a restricted, operator-controlled vocabulary (§9).
func TargetName(name string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(name))
	return strings.ToLower(strings.TrimRight(encoded, "="))
}
