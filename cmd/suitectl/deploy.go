package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/deploy"
	"github.com/workflow-use/suitectl/pkg/exec"
)

func deployCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Install suite components and create the workspace layout",
		Long: `Check prerequisites (python3, git, node, npm), install the web UI
and frontend dependencies where their directories exist, create the
data/logs/workflows directories, and write a starter .env. The outcome
is recorded in deployment_report.json under the deployment root.`,
		Run: func(cmd *cobra.Command, args []string) {
			runDeploy(root)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Deployment root directory")

	return cmd
}

func runDeploy(root string) {
	initCLILogging()

	cfg, err := config.Load(configDir)
	if err != nil {
		fatalf("load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := deploy.New(exec.NewOSRunner(), os.Stdout, root, cfg)
	if _, err := d.Run(ctx); err != nil {
		// The console summary has already named the failed steps.
		os.Exit(1)
	}
}
