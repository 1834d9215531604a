// Package exec provides a testable command execution seam. Components take a
// Runner instead of calling os/exec directly, so tests can script process
// behavior.
package exec

import (
	"context"
	"errors"
	"os"
	osexec "os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Runner defines the interface for executing external commands.
type Runner interface {
	// Run executes a command and returns combined stdout/stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunInDir executes a command in a specific directory.
	RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// Start begins a long-running command without waiting for completion.
	// dir may be empty for the current directory.
	Start(ctx context.Context, dir, name string, args ...string) (Process, error)
}

// Process is a started command under supervision.
type Process interface {
	Pid() int
	Signal(sig os.Signal) error
	Kill() error
	// Wait blocks until the process exits and returns its exit error.
	// It must be called exactly once.
	Wait() error
}

// OSRunner implements Runner using os/exec.
type OSRunner struct{}

// NewOSRunner creates a new OS-based command runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes a command and returns combined output.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// RunInDir executes a command in a specific directory.
func (r *OSRunner) RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Start begins a command without waiting. The child shares the parent's
// stdout/stderr so service output stays visible on the console.
// Cancelling ctx sends SIGTERM rather than the default SIGKILL; the
// supervisor owns the kill decision, with WaitDelay as the backstop for
// a child that ignores the signal.
func (r *OSRunner) Start(ctx context.Context, dir, name string, args ...string) (Process, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &osProcess{cmd: cmd}, nil
}

type osProcess struct {
	cmd *osexec.Cmd
}

func (p *osProcess) Pid() int { return p.cmd.Process.Pid }

func (p *osProcess) Signal(sig os.Signal) error { return p.cmd.Process.Signal(sig) }

func (p *osProcess) Kill() error { return p.cmd.Process.Kill() }

func (p *osProcess) Wait() error { return p.cmd.Wait() }

// MockRunner implements Runner for testing.
type MockRunner struct {
	mu sync.Mutex

	// Calls records all command invocations in order.
	Calls []MockCall

	// Responses maps a command name, or a full command line such as
	// "npm install", to its scripted response. The full line wins when
	// both are present.
	Responses map[string]MockResponse

	// StartErrs maps a command name to an error returned from Start.
	StartErrs map[string]error

	// Started holds the processes handed out by Start, in order.
	Started []*MockProcess
}

// MockCall records a single command invocation.
type MockCall struct {
	Name string
	Args []string
	Dir  string
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockRunner creates a new mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
		StartErrs: make(map[string]error),
	}
}

// AddResponse sets the response for a command name.
func (m *MockRunner) AddResponse(name string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[name] = resp
}

// CallNames returns the names of all recorded invocations in order.
func (m *MockRunner) CallNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		names[i] = c.Name
	}
	return names
}

// StartedProcs returns a snapshot of the processes created by Start,
// safe to call while other goroutines are still starting commands.
func (m *MockRunner) StartedProcs() []*MockProcess {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockProcess(nil), m.Started...)
}

func (m *MockRunner) record(name string, args []string, dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args, Dir: dir})
}

func (m *MockRunner) getResponse(name string, args []string) MockResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	line := strings.Join(append([]string{name}, args...), " ")
	if resp, ok := m.Responses[line]; ok {
		return resp
	}
	if resp, ok := m.Responses[name]; ok {
		return resp
	}
	return MockResponse{}
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.record(name, args, "")
	resp := m.getResponse(name, args)
	return resp.Output, resp.Err
}

func (m *MockRunner) RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	m.record(name, args, dir)
	resp := m.getResponse(name, args)
	return resp.Output, resp.Err
}

func (m *MockRunner) Start(ctx context.Context, dir, name string, args ...string) (Process, error) {
	m.record(name, args, dir)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.StartErrs[name]; ok {
		return nil, err
	}
	proc := newMockProcess(1000 + len(m.Started))
	m.Started = append(m.Started, proc)
	return proc, nil
}

// MockProcess is a scriptable Process. Tests drive its lifetime with Exit.
type MockProcess struct {
	pid  int
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	exitErr error
	signals []os.Signal
	killed  bool
}

func newMockProcess(pid int) *MockProcess {
	return &MockProcess{
		pid:  pid,
		done: make(chan struct{}),
	}
}

// Exit makes the process terminate with err; Wait unblocks. Subsequent
// calls are no-ops.
func (p *MockProcess) Exit(err error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()
		close(p.done)
	})
}

// Signals returns the signals delivered so far.
func (p *MockProcess) Signals() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal(nil), p.signals...)
}

// Killed reports whether Kill was called.
func (p *MockProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

func (p *MockProcess) Pid() int { return p.pid }

func (p *MockProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	p.mu.Unlock()
	return nil
}

func (p *MockProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.Exit(errors.New("killed"))
	return nil
}

func (p *MockProcess) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}
