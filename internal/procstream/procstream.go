// Package procstream spawns external commands and exposes their combined
// stdout+stderr output as a stream of lines plus an eventual exit status.
//
// One Handle owns one OS subprocess. The line stream is consumable exactly
// once; the process is always reaped regardless of how the stream ends
// (normal exit, cancellation, or timeout-driven cancel by the caller).
package procstream

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/xcpipe/xcpipe/internal/errors"
)

// Source tags which stream a line arrived on.
type Source string

const (
	SourceStdout Source = "stdout"
	SourceStderr Source = "stderr"
)

// OutputLine is a single line of process output. Seq is strictly increasing
// per handle; stdout and stderr are merged in order of arrival.
type OutputLine struct {
	Seq    uint64
	Source Source
	Text   string
}

// Spec describes the command to spawn.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Env     map[string]string
}

// Exit is the terminal status of the subprocess. When Cancelled is true the
// numeric code is not meaningful and must not be interpreted as a tool result.
type Exit struct {
	Code      int
	Cancelled bool
}

// ErrAlreadyConsumed is returned by Lines when the stream has already been
// claimed by another consumer.
var ErrAlreadyConsumed = errors.New("output stream already consumed")

// killGracePeriod is how long Cancel waits after SIGTERM before escalating
// to SIGKILL on the process group.
const killGracePeriod = 5 * time.Second

// Handle is an owned, running external process.
type Handle struct {
	spec      Spec
	cmd       *exec.Cmd
	startedAt time.Time

	lines    chan OutputLine
	consumed atomic.Bool

	seq atomic.Uint64

	cancelOnce sync.Once
	cancelled  atomic.Bool

	done chan struct{}
	exit Exit
}

// Start spawns the command described by spec. It fails with a spawn error if
// the executable cannot be found or the working directory is invalid; any
// later failure is reported through Wait, not Start.
func Start(spec Spec) (*Handle, error) {
	if spec.Dir != "" {
		info, err := os.Stat(spec.Dir)
		if err != nil {
			return nil, errors.Spawnf(err, "invalid working directory %q", spec.Dir)
		}
		if !info.IsDir() {
			return nil, errors.Spawnf(nil, "working directory %q is not a directory", spec.Dir)
		}
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Spawnf(err, "stdout pipe for %q", spec.Command)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Spawnf(err, "stderr pipe for %q", spec.Command)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Spawnf(err, "cannot start %q", spec.Command)
	}

	h := &Handle{
		spec:      spec,
		cmd:       cmd,
		startedAt: time.Now(),
		lines:     make(chan OutputLine, 256),
		done:      make(chan struct{}),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go h.readLines(stdoutPipe, SourceStdout, &readers)
	go h.readLines(stderrPipe, SourceStderr, &readers)

	go func() {
		// Readers must drain before Wait closes the pipes under them.
		readers.Wait()
		close(h.lines)

		err := cmd.Wait()
		code := 0
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		} else if err != nil {
			code = -1
		}
		h.exit = Exit{Code: code, Cancelled: h.cancelled.Load()}
		close(h.done)
	}()

	return h, nil
}

// StartedAt reports when the subprocess was spawned.
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// Lines returns the merged output line stream. The stream is closed after the
// final complete line; it can be claimed by exactly one consumer.
func (h *Handle) Lines() (<-chan OutputLine, error) {
	if h.consumed.Swap(true) {
		return nil, ErrAlreadyConsumed
	}
	return h.lines, nil
}

// Cancel requests termination of the subprocess. It is idempotent and
// returns immediately; the process group receives SIGTERM, then SIGKILL
// after a grace period if it has not exited.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() {
		h.cancelled.Store(true)
		pid := h.cmd.Process.Pid
		_ = syscall.Kill(-pid, syscall.SIGTERM)

		go func() {
			select {
			case <-h.done:
			case <-time.After(killGracePeriod):
				_ = syscall.Kill(-pid, syscall.SIGKILL)
			}
		}()
	})
}

// Cancelled reports whether cancellation has been requested.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Wait blocks until the subprocess has exited and been reaped, then returns
// its exit status. Safe to call from multiple goroutines.
func (h *Handle) Wait() Exit {
	<-h.done
	return h.exit
}

// readLines turns a pipe into OutputLine values. A final unterminated line
// (process killed mid-write) is discarded rather than mis-parsed.
func (h *Handle) readLines(r io.Reader, src Source, wg *sync.WaitGroup) {
	defer wg.Done()

	reader := bufio.NewReader(r)
	for {
		text, err := reader.ReadString('\n')
		if err != nil {
			// Drop the incomplete tail, if any.
			return
		}
		text = trimLineEnding(text)
		h.lines <- OutputLine{
			Seq:    h.seq.Add(1),
			Source: src,
			Text:   text,
		}
	}
}

func trimLineEnding(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
