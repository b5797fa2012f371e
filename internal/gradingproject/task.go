package gradingproject

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/3rg0n/concoct/internal/cerrors"
)

// taskConfig is config.json's exact field set (spec.md §6: "Task
// configuration file"). Field names match the file verbatim; Task
// itself uses the more descriptive names spec.md's prose gives the same
// attributes.
type taskConfig struct {
	Name         string   `json:"name"`
	Desc         string   `json:"desc"`
	Libs         []string `json:"libs"`
	SrcDir       string   `json:"src_dir"`
	Files        []string `json:"files"`
	FilesMain    []string `json:"files_main"`
	FilesTest    []string `json:"files_test"`
	FilesStudent []string `json:"files_student"`
}

// Task is one exercise's configuration, loaded from
// <task-path>/config.json. Paths in Files/FilesMain/FilesTest/
// FilesStudent are resolved relative to <task-path>/<src_dir> at load
// time, so every later consumer sees ready-to-stat absolute paths.
type Task struct {
	Name            string
	DescriptionPath string
	Libs            []string
	SourceRoot      string
	Files           []string
	FilesMain       []string
	FilesTest       []string
	FilesStudent    []string
}

// Load reads <taskPath>/config.json and resolves its file lists.
func Load(taskPath string) (*Task, error) {
	configPath := filepath.Join(taskPath, "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, cerrors.NewInputValidation("cannot read task config: "+configPath, err)
	}

	var cfg taskConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, cerrors.NewInputValidation("malformed task config: "+configPath, err)
	}

	sourceRoot := filepath.Join(taskPath, cfg.SrcDir)
	resolve := func(names []string) []string {
		out := make([]string, 0, len(names))
		for _, n := range names {
			out = append(out, filepath.Join(sourceRoot, n))
		}
		return out
	}

	return &Task{
		Name:            cfg.Name,
		DescriptionPath: filepath.Join(taskPath, cfg.Desc),
		Libs:            cfg.Libs,
		SourceRoot:      sourceRoot,
		Files:           resolve(cfg.Files),
		FilesMain:       resolve(cfg.FilesMain),
		FilesTest:       resolve(cfg.FilesTest),
		FilesStudent:    resolve(cfg.FilesStudent),
	}, nil
}

// Solution is the student-supplied file list for one grading attempt.
type Solution struct {
	Files []string
}

// NewSolution wraps a student's file list, exactly as given (not yet
// resolved relative to any source root — the caller decides that).
func NewSolution(files []string) *Solution {
	return &Solution{Files: files}
}

// MainProject fabricates the "does it build and run standalone"
// Project: Files + FilesMain + (solution files, or FilesStudent if no
// solution was submitted).
func (t *Task) MainProject(solution *Solution) (*Project, error) {
	return t.buildProject(t.FilesMain, solution)
}

// TestProject fabricates the "does it pass the instructor's unit tests"
// Project: Files + FilesTest + (solution files, or FilesStudent).
func (t *Task) TestProject(solution *Solution) (*Project, error) {
	return t.buildProject(t.FilesTest, solution)
}

func (t *Task) buildProject(entryFiles []string, solution *Solution) (*Project, error) {
	studentFiles := t.FilesStudent
	if solution != nil && len(solution.Files) > 0 {
		studentFiles = solution.Files
	}

	fileList := make([]string, 0, len(t.Files)+len(entryFiles)+len(studentFiles))
	fileList = append(fileList, t.Files...)
	fileList = append(fileList, entryFiles...)
	fileList = append(fileList, studentFiles...)

	return New(t.Name, fileList, []string{t.SourceRoot}, t.Libs)
}
