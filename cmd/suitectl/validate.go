package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workflow-use/suitectl/pkg/exec"
	"github.com/workflow-use/suitectl/pkg/validate"
)

func validateCmd() *cobra.Command {
	var skipSuite bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run post-deployment checks against the installed suite",
		Long: `Run the validation sequence: environment prerequisites, launcher
binary, configuration loading, backend startup and health, providers
endpoint, and full-suite readiness. Results are written to
validation_report.json; the exit code is 1 when any check failed.`,
		Run: func(cmd *cobra.Command, args []string) {
			runValidate(skipSuite)
		},
	}

	cmd.Flags().BoolVar(&skipSuite, "skip-suite", false, "Skip the full-suite readiness check")

	return cmd
}

func runValidate(skipSuite bool) {
	initCLILogging()
	loadDotEnv()

	selfExe, err := os.Executable()
	if err != nil {
		fatalf("resolve executable path: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v := validate.New(exec.NewOSRunner(), os.Stdout, validate.Options{
		SelfExe:   selfExe,
		ConfigDir: configDir,
		SkipSuite: skipSuite,
	})

	report := v.Run(ctx)
	if err := report.Write(validate.ReportFile); err != nil {
		fatalf("write %s: %v", validate.ReportFile, err)
	}
	fmt.Printf("\nReport written to %s\n", validate.ReportFile)

	if report.Summary.Failed > 0 {
		os.Exit(1)
	}
}
