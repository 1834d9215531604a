// Package main provides the suitectl CLI entrypoint.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/workflow-use/suitectl/pkg/version"
)

var configDir string

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadDotEnv loads configDir/.env into the process environment. A missing
// file is not an error; the suite runs on built-in defaults.
func loadDotEnv() {
	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}
}

// initCLILogging keeps slog on stderr at warn level. The colored command
// output owns stdout; informational logging belongs to the serve command's
// file logger.
func initCLILogging() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(handler))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "suitectl",
		Short: "Workflow-use suite controller",
		Long: `suitectl runs and manages the workflow-use suite.

Usage modes:
  suitectl serve       Run the chat backend HTTP server
  suitectl launch      Start suite services with supervision
  suitectl deploy      Install components and create the workspace layout
  suitectl validate    Run post-deployment checks

Use 'suitectl help <command>' for details on a command.`,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir",
		getEnv("CONFIG_DIR", "."),
		"Directory holding suite.yaml and .env")

	rootCmd.AddGroup(
		&cobra.Group{ID: "backend", Title: "Backend:"},
		&cobra.Group{ID: "suite", Title: "Suite management:"},
	)

	serve := serveCmd()
	serve.GroupID = "backend"
	rootCmd.AddCommand(serve)

	launch := launchCmd()
	launch.GroupID = "suite"
	rootCmd.AddCommand(launch)

	deploy := deployCmd()
	deploy.GroupID = "suite"
	rootCmd.AddCommand(deploy)

	validate := validateCmd()
	validate.GroupID = "suite"
	rootCmd.AddCommand(validate)

	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the suitectl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Full())
		},
	}
}
