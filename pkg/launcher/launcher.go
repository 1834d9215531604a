// Package launcher starts and supervises the suite's long-running
// services: the chat backend, the browser-use web UI, and the workflow
// frontend. Services start sequentially with a readiness gate between
// them and are stopped in order on shutdown, SIGTERM first and SIGKILL
// after a grace period.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/workflow-use/suitectl/pkg/exec"
)

const (
	defaultPollInterval = time.Second
	defaultStopGrace    = 2 * time.Second
)

// Launcher spawns suite services through a Runner and supervises them
// until the context is cancelled or one of them exits.
type Launcher struct {
	runner exec.Runner
	out    io.Writer
	client *http.Client

	pollInterval time.Duration
	stopGrace    time.Duration

	procs []*supervised
}

// supervised pairs a running service with its exit state. done closes
// when the process has exited and exitErr is set.
type supervised struct {
	service Service
	proc    exec.Process
	done    chan struct{}
	exitErr error
}

// New returns a Launcher writing console output to out.
func New(runner exec.Runner, out io.Writer) *Launcher {
	return &Launcher{
		runner:       runner,
		out:          out,
		client:       &http.Client{Timeout: 2 * time.Second},
		pollInterval: defaultPollInterval,
		stopGrace:    defaultStopGrace,
	}
}

// Run starts the given services in order and supervises them until ctx
// is cancelled. A cancelled context is the normal way to stop the suite
// and yields a nil error; a service exiting on its own stops everything
// else and returns an error.
func (l *Launcher) Run(ctx context.Context, services []Service, openBrowser bool) error {
	// Buffered so exit notifications never block the waiter goroutines,
	// including exits caused by our own shutdown.
	exits := make(chan *supervised, len(services))

	for _, svc := range services {
		s, err := l.startService(ctx, svc, exits)
		if err != nil {
			l.stopAll()
			return fmt.Errorf("failed to start %s: %w", svc.Name, err)
		}
		l.procs = append(l.procs, s)
	}

	l.printRunning(services)

	if openBrowser && len(services) > 0 {
		l.openBrowser(ctx, browseURL(services))
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(l.out)
		fmt.Fprintln(l.out, color.CyanString("Shutting down services..."))
		l.stopAll()
		fmt.Fprintf(l.out, "%s All services stopped\n", color.GreenString("✓"))
		return nil
	case s := <-exits:
		fmt.Fprintf(l.out, "%s %s stopped unexpectedly\n", color.RedString("✗"), s.service.Display)
		slog.Error("Service exited unexpectedly", "service", s.service.Name, "error", s.exitErr)
		l.stopAll()
		return fmt.Errorf("%s exited unexpectedly", s.service.Name)
	}
}

// startService spawns one service and waits for its readiness URL. A
// readiness timeout is reported but does not fail the start.
func (l *Launcher) startService(ctx context.Context, svc Service, exits chan<- *supervised) (*supervised, error) {
	fmt.Fprintf(l.out, "Starting %s...\n", svc.Display)

	proc, err := l.runner.Start(ctx, svc.Dir, svc.Command[0], svc.Command[1:]...)
	if err != nil {
		return nil, err
	}
	slog.Info("Service started", "service", svc.Name, "pid", proc.Pid())

	s := &supervised{service: svc, proc: proc, done: make(chan struct{})}
	go func() {
		s.exitErr = proc.Wait()
		close(s.done)
		exits <- s
	}()

	if l.waitReady(ctx, s) {
		fmt.Fprintf(l.out, "%s %s started\n", color.GreenString("✓"), svc.Display)
	} else {
		fmt.Fprintf(l.out, "%s %s started but is not answering at %s yet\n",
			color.YellowString("⚠"), svc.Display, svc.ReadyURL)
		slog.Warn("Service readiness timed out", "service", svc.Name, "url", svc.ReadyURL)
	}
	return s, nil
}

// waitReady polls the service's readiness URL once per interval until
// it answers 200, the timeout elapses, or the process dies.
func (l *Launcher) waitReady(ctx context.Context, s *supervised) bool {
	deadline := time.Now().Add(s.service.StartTimeout)
	for {
		if l.probe(ctx, s.service.ReadyURL) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-s.done:
			return false
		case <-time.After(l.pollInterval):
		}
	}
}

func (l *Launcher) probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// stopAll stops every supervised process in start order.
func (l *Launcher) stopAll() {
	for _, s := range l.procs {
		l.stop(s)
	}
	l.procs = nil
}

// stop asks the process to terminate and kills it after the grace
// period. Returns immediately when the process is already gone.
func (l *Launcher) stop(s *supervised) {
	select {
	case <-s.done:
		return
	default:
	}

	if err := s.proc.Signal(syscall.SIGTERM); err != nil {
		slog.Warn("Failed to signal service", "service", s.service.Name, "error", err)
	}
	select {
	case <-s.done:
		slog.Info("Service stopped", "service", s.service.Name)
	case <-time.After(l.stopGrace):
		_ = s.proc.Kill()
		<-s.done
		slog.Warn("Service killed after grace period", "service", s.service.Name)
	}
}

func (l *Launcher) printRunning(services []Service) {
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, color.CyanString("Suite is running"))
	for _, svc := range services {
		fmt.Fprintf(l.out, "  %-18s %s\n", svc.Display+":", svc.URL)
	}
	fmt.Fprintln(l.out, "Press Ctrl+C to stop all services")
	fmt.Fprintln(l.out)
}

// openBrowser opens url with the platform opener. Failures are
// reported and otherwise ignored; the suite keeps running either way.
func (l *Launcher) openBrowser(ctx context.Context, url string) {
	name, args := openerCommand(url)
	if _, err := l.runner.Run(ctx, name, args...); err != nil {
		fmt.Fprintf(l.out, "%s Could not open browser: %v\n", color.YellowString("⚠"), err)
		return
	}
	slog.Info("Opened browser", "url", url)
}

func openerCommand(url string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// browseURL picks the page worth opening: the web UI when it is part of
// the selection, otherwise the first service.
func browseURL(services []Service) string {
	for _, svc := range services {
		if svc.Name == "webui" {
			return svc.URL
		}
	}
	return services[0].URL
}
