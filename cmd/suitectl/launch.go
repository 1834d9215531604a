package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/exec"
	"github.com/workflow-use/suitectl/pkg/launcher"
)

func launchCmd() *cobra.Command {
	var (
		ip           string
		backendPort  int
		webuiPort    int
		frontendPort int
		openBrowser  bool
	)

	cmd := &cobra.Command{
		Use:   "launch [backend|webui|frontend|suite]",
		Short: "Start suite services with readiness gates and supervision",
		Long: `Start one suite service, or all of them in dependency order
(backend, then web UI, then frontend). Each service is polled until its
URL answers; all services are supervised until Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			target := "suite"
			if len(args) > 0 {
				target = args[0]
			}
			runLaunch(target, ip, backendPort, webuiPort, frontendPort, openBrowser)
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "Bind address for the backend and web UI (default "+config.DefaultConfig().API.Host+")")
	cmd.Flags().IntVar(&backendPort, "backend-port", 0, "Backend port (default "+strconv.Itoa(config.DefaultBackendPort)+")")
	cmd.Flags().IntVar(&webuiPort, "webui-port", 0, "Web UI port (default "+strconv.Itoa(config.DefaultWebUIPort)+")")
	cmd.Flags().IntVar(&frontendPort, "frontend-port", 0, "Frontend dev server port (default "+strconv.Itoa(config.DefaultFrontendPort)+")")
	cmd.Flags().BoolVar(&openBrowser, "open-browser", false, "Open the web UI in a browser once services are ready")

	return cmd
}

func runLaunch(target, ip string, backendPort, webuiPort, frontendPort int, openBrowser bool) {
	initCLILogging()
	loadDotEnv()

	// Flag overrides travel through the environment so spawned services
	// resolve the same addresses as the launcher.
	if ip != "" {
		os.Setenv("API_HOST", ip)
		os.Setenv("WEBUI_HOST", ip)
	}
	if backendPort != 0 {
		os.Setenv("API_PORT", strconv.Itoa(backendPort))
	}
	if webuiPort != 0 {
		os.Setenv("WEBUI_PORT", strconv.Itoa(webuiPort))
	}
	if frontendPort != 0 {
		os.Setenv("FRONTEND_PORT", strconv.Itoa(frontendPort))
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fatalf("load configuration: %v", err)
	}

	selfExe, err := os.Executable()
	if err != nil {
		fatalf("resolve executable path: %v", err)
	}

	var services []launcher.Service
	switch target {
	case "backend":
		services = []launcher.Service{launcher.BackendService(cfg, selfExe)}
	case "webui":
		services = []launcher.Service{launcher.WebUIService(cfg)}
	case "frontend":
		services = []launcher.Service{launcher.FrontendService(cfg)}
	case "suite":
		services = launcher.Services(cfg, selfExe)
	default:
		fatalf("unknown target %q (expected backend, webui, frontend, or suite)", target)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := launcher.New(exec.NewOSRunner(), os.Stdout)
	if err := l.Run(ctx, services, openBrowser); err != nil {
		fatalf("%v", err)
	}
}
