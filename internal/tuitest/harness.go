// Package tuitest runs a CLI inside a pseudo terminal, replays scripted input
// and records everything the program paints.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 5 * time.Second
)

// Step is one scripted interaction: an optional pause followed by bytes
// written to the terminal.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Type returns a step that writes text as typed runes.
func Type(text string) Step {
	return Step{Input: []byte(text)}
}

// Press returns a step that writes a key sequence such as KeyTab.
func Press(key []byte) Step {
	return Step{Input: key}
}

// Wait returns a step that only sleeps.
func Wait(d time.Duration) Step {
	return Step{Delay: d}
}

var (
	// KeyTab moves focus to the next field.
	KeyTab = []byte{'\t'}
	// KeyShiftTab moves focus to the previous field.
	KeyShiftTab = []byte("\x1b[Z")
	// KeyCtrlC requests the program to terminate.
	KeyCtrlC = []byte{3}
	// KeyCtrlN appends a section.
	KeyCtrlN = []byte{14}
	// KeyCtrlS submits the draft.
	KeyCtrlS = []byte{19}
)

// Config describes the program to spawn and the script to replay. Env entries
// are appended to the current environment.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
	Steps   []Step
	Timeout time.Duration
	// AllowInterrupt accepts an exit caused by SIGINT, which is what ctrl+c
	// produces when the program does not handle it first.
	AllowInterrupt bool
}

// Recording is the raw byte stream the program wrote to its terminal.
type Recording struct {
	Raw []byte
}

// session owns one running program and the goroutine draining its output.
type session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	mu     sync.Mutex
	output bytes.Buffer
	done   chan struct{}
}

// Run spawns cfg.Command in a PTY, replays cfg.Steps and waits for the program
// to exit.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, withDefault(cfg.Timeout, defaultTimeout))
	defer cancel()

	s, err := start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.ptmx.Close() }()

	if err := s.replay(ctx, cfg.Steps); err != nil {
		return nil, err
	}
	if err := s.wait(ctx, cfg.AllowInterrupt); err != nil {
		return nil, err
	}
	return &Recording{Raw: s.close()}, nil
}

func start(ctx context.Context, cfg Config) (*session, error) {
	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	size := &pty.Winsize{
		Rows: uint16(withDefault(cfg.Height, defaultHeight)),
		Cols: uint16(withDefault(cfg.Width, defaultWidth)),
	}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	s := &session{cmd: cmd, ptmx: ptmx, done: make(chan struct{})}
	go s.drain()
	return s, nil
}

// drain copies terminal output until the PTY closes, answering any terminal
// queries on the way.
func (s *session) drain() {
	defer close(s.done)
	responder := newTerminalResponder(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			responder.Process(chunk)
			s.mu.Lock()
			s.output.Write(chunk)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *session) replay(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: context cancelled before script finished: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) == 0 {
			continue
		}
		if _, err := s.ptmx.Write(step.Input); err != nil {
			return fmt.Errorf("tuitest: write input: %w", err)
		}
	}
	return nil
}

func (s *session) wait(ctx context.Context, allowInterrupt bool) error {
	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()

	select {
	case err := <-exited:
		if err == nil {
			return nil
		}
		if allowInterrupt && strings.Contains(err.Error(), "signal: interrupt") {
			return nil
		}
		return fmt.Errorf("tuitest: program exited with error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}
}

// close shuts the PTY so drain returns, then hands back everything read.
func (s *session) close() []byte {
	_ = s.ptmx.Close()
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.output.Bytes())
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

func withDefault[T int | time.Duration](value, fallback T) T {
	if value <= 0 {
		return fallback
	}
	return value
}
