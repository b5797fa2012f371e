// Command concoct is the thin external CLI adapter over the grading
// pipeline: it loads a task and optional solution, runs the pipeline or
// exports an editor project, and prints the resulting report.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/3rg0n/concoct/internal/cerrors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cerrors.Format(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		taskPath    string
		unittest    bool
		project     bool
		solution    string
		backendFlag string
		zipName     string
	)

	cmd := &cobra.Command{
		Use:   "concoct",
		Short: "Grade student C solutions against instructor-defined tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := runOptions{
				taskPath:    viper.GetString("task"),
				unittest:    viper.GetBool("unittest"),
				project:     viper.GetBool("project"),
				solution:    viper.GetString("solution"),
				backendFlag: viper.GetString("backend"),
				zipName:     viper.GetString("project-file-name"),
			}
			if !opts.unittest && !opts.project {
				return cerrors.NewInputValidation("one of --unittest or --project is required", nil)
			}
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&taskPath, "task", "", "path to the task directory (required)")
	flags.BoolVar(&unittest, "unittest", false, "run the grading pipeline")
	flags.BoolVar(&project, "project", false, "export a portable editor project zip")
	flags.StringVar(&solution, "solution", "", "path to a single student solution file")
	flags.StringVar(&backendFlag, "backend", "vm", "isolation backend: vm|docker")
	flags.StringVar(&zipName, "project-file-name", "project.zip", "output zip name for --project")
	cobra.CheckErr(cmd.MarkFlagRequired("task"))

	// Every flag above except --task is also settable as CONCOCT_<NAME>,
	// e.g. CONCOCT_BACKEND, via BindPFlags; --task is marked required, so
	// cobra rejects a run that does not pass it as a flag. The isolation
	// backend's own CONCOCT_VM_* settings (cmd/concoct/run.go) go
	// through the same viper instance.
	viper.SetEnvPrefix("concoct")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlags(flags))

	return cmd
}
