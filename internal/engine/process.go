package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fusion-energy/cad-to-h5m/internal/metrics"
	"go.uber.org/zap"
)

// DefaultBridge is the name of the bridge executable looked up in the engine path
const DefaultBridge = "cubit-bridge"

const closeTimeout = 10 * time.Second

// Config describes how to launch the engine bridge process
type Config struct {
	// Path is the engine installation directory
	Path string `yaml:"path"`
	// Bridge is the bridge executable, relative to Path unless absolute
	Bridge string   `yaml:"bridge"`
	Args   []string `yaml:"args"`
	Env    []string `yaml:"-"`
}

// Executable returns the bridge executable path
func (c Config) Executable() string {
	bridge := c.Bridge
	if bridge == "" {
		bridge = DefaultBridge
	}
	if filepath.IsAbs(bridge) || c.Path == "" {
		return bridge
	}
	return filepath.Join(c.Path, bridge)
}

type request struct {
	Op      string `json:"op"`
	Command string `json:"command,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Scope   string `json:"scope,omitempty"`
	ID      int    `json:"id,omitempty"`
	Path    string `json:"path,omitempty"`
}

type response struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Output string `json:"output,omitempty"`
	IDs    []int  `json:"ids,omitempty"`
	Planar bool   `json:"planar,omitempty"`
}

// Process talks to an engine bridge process over JSON lines on stdin/stdout
type Process struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Scanner
	encoder    *json.Encoder
	logger     *zap.Logger
	stderrDone chan struct{}
	closed     bool
}

// Start launches the bridge process and waits for it to initialize the engine
func Start(ctx context.Context, cfg Config, logger *zap.Logger) (*Process, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	executable := cfg.Executable()

	cmd := exec.CommandContext(ctx, executable, cfg.Args...)
	cmd.Env = append(os.Environ(), cfg.Env...)
	if cfg.Path != "" {
		cmd.Env = append(cmd.Env, "CUBIT_PATH="+cfg.Path)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &EngineUnavailableError{Path: cfg.Path, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &EngineUnavailableError{Path: cfg.Path, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &EngineUnavailableError{Path: cfg.Path, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &EngineUnavailableError{Path: cfg.Path, Err: fmt.Errorf("failed to start %s: %w", executable, err)}
	}
	logger.Debug("Engine bridge started", zap.String("executable", executable), zap.Int("pid", cmd.Process.Pid))

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	p := &Process{
		cmd:        cmd,
		stdin:      stdin,
		stdout:     scanner,
		encoder:    json.NewEncoder(stdin),
		logger:     logger,
		stderrDone: make(chan struct{}),
	}
	go p.drainStderr(stderr)

	if _, err := p.roundTrip(request{Op: "init", Path: cfg.Path}); err != nil {
		p.Close()
		return nil, &EngineUnavailableError{Path: cfg.Path, Err: err}
	}
	return p, nil
}

func (p *Process) drainStderr(r io.Reader) {
	defer close(p.stderrDone)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.logger.Info("Engine", zap.String("stderr", scanner.Text()))
	}
}

func (p *Process) roundTrip(req request) (*response, error) {
	if p.closed {
		return nil, fmt.Errorf("engine session is closed")
	}
	if err := p.encoder.Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", req.Op, err)
	}
	if !p.stdout.Scan() {
		err := p.stdout.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("engine closed the connection: %w", err)
	}

	var resp response
	if err := json.Unmarshal(p.stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("invalid engine response: %w", err)
	}
	if resp.Output != "" {
		p.logger.Debug("Engine output", zap.String("op", req.Op), zap.String("output", resp.Output))
	}
	if !resp.OK {
		return &resp, &CommandError{Command: describe(req), Message: resp.Error}
	}
	return &resp, nil
}

func describe(req request) string {
	switch req.Op {
	case "cmd":
		return req.Command
	case "list":
		return fmt.Sprintf("list %s %s", req.Kind, req.Scope)
	case "planar":
		return fmt.Sprintf("planar surface %d", req.ID)
	default:
		return req.Op
	}
}

func (p *Process) Execute(command string) error {
	_, err := p.roundTrip(request{Op: "cmd", Command: command})
	return err
}

func (p *Process) List(kind Kind, scope string) ([]int, error) {
	resp, err := p.roundTrip(request{Op: "list", Kind: string(kind), Scope: scope})
	if err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (p *Process) Planar(surface int) (bool, error) {
	resp, err := p.roundTrip(request{Op: "planar", ID: surface})
	if err != nil {
		return false, err
	}
	return resp.Planar, nil
}

// Close asks the bridge to exit and waits for it
func (p *Process) Close() error {
	if p.closed {
		return nil
	}
	_ = p.encoder.Encode(request{Op: "exit"})
	p.closed = true
	p.stdin.Close()

	select {
	case <-p.stderrDone:
	case <-time.After(closeTimeout):
		p.logger.Warn("Engine bridge did not exit, killing it")
		p.cmd.Process.Kill()
		<-p.stderrDone
	}

	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("engine bridge exited with error: %w", err)
	}
	return nil
}

// Open starts the engine bridge and returns a ready Session
func Open(ctx context.Context, cfg Config, logger *zap.Logger, collector *metrics.Collector) (Session, error) {
	p, err := Start(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewCommandSession(p, logger, collector), nil
}
