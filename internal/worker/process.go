package worker

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// maxLineSize caps a single buffered line of worker output.
const maxLineSize = 64 * 1024

// Handle is the controller's view of the running worker.
type Handle interface {
	// Pid returns the operating system process id.
	Pid() int

	// Alive reports whether the process is still running.
	Alive() bool

	// Exited is closed once the process has exited and been reaped.
	Exited() <-chan struct{}

	// Terminate kills the process. It is safe to call after the process
	// has exited.
	Terminate() error
}

// process implements Handle over an exec.Cmd.
type process struct {
	log    *slog.Logger
	cmd    *exec.Cmd
	exited chan struct{}
}

// Compile-time verification that process implements Handle.
var _ Handle = (*process)(nil)

func newProcess(log *slog.Logger, cmd *exec.Cmd) *process {
	log = log.With("component", "worker")
	cmd.Stdout = &lineWriter{log: log, stream: "stdout"}
	cmd.Stderr = &lineWriter{log: log, stream: "stderr"}

	return &process{
		log:    log,
		cmd:    cmd,
		exited: make(chan struct{}),
	}
}

func (p *process) start() error {
	if err := p.cmd.Start(); err != nil {
		return err
	}

	go p.reap()

	return nil
}

// reap waits for the process so it never lingers as a zombie.
func (p *process) reap() {
	if err := p.cmd.Wait(); err != nil {
		exitCode := -1
		if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
			exitCode = exitErr.ExitCode()
		}

		p.log.Debug("Worker process exited with error", "exit_code", exitCode, "error", err)
	} else {
		p.log.Debug("Worker process exited")
	}

	close(p.exited)
}

func (p *process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

func (p *process) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return p.cmd.Process != nil
	}
}

func (p *process) Exited() <-chan struct{} {
	return p.exited
}

func (p *process) Terminate() error {
	if !p.Alive() {
		return nil
	}

	p.log.Debug("Killing worker process", "pid", p.Pid())

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill worker process (pid %d): %w", p.Pid(), err)
	}

	return nil
}

// lineWriter logs worker output one line at a time.
type lineWriter struct {
	log    *slog.Logger
	stream string
	buf    bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)

	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line: keep it for the next write unless it is too long.
			if len(line) < maxLineSize {
				w.buf.Write(line)

				break
			}
		}

		if text := string(bytes.TrimRight(line, "\r\n")); text != "" {
			w.log.Debug("Worker output", "stream", w.stream, "line", text)
		}

		if err != nil {
			break
		}
	}

	return len(p), nil
}
