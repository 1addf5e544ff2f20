package controller

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tmgtoolbox/aimsunbridge/internal/frame"
	"github.com/tmgtoolbox/aimsunbridge/internal/pipe"
	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

// replyFunc scripts the worker's answer to one request. Returning nil
// sends nothing and keeps reading.
type replyFunc func(w *mockWorker, req frame.Frame) []frame.Frame

// mockWorker speaks the worker side of the protocol over one half of a
// net.Pipe and implements worker.Handle for the controller.
type mockWorker struct {
	conn   net.Conn
	reply  replyFunc
	exited chan struct{}
	once   sync.Once

	mu           sync.Mutex
	requests     []frame.Frame
	terminations int
	killed       bool
}

// Compile-time verification that mockWorker implements worker.Handle.
var _ worker.Handle = (*mockWorker)(nil)

func complete(*mockWorker, frame.Frame) []frame.Frame {
	return []frame.Frame{{Signal: frame.RunComplete}}
}

func replyWith(frames ...frame.Frame) replyFunc {
	return func(*mockWorker, frame.Frame) []frame.Frame { return frames }
}

// startMockWorker connects a mock worker to a new controller and returns both.
// The controller is disposed when the test ends.
func startMockWorker(t *testing.T, reply replyFunc, sink func(string)) (*Controller, *mockWorker) {
	t.Helper()

	ctrlSide, workerSide := net.Pipe()

	w := &mockWorker{
		conn:   workerSide,
		reply:  reply,
		exited: make(chan struct{}),
	}

	go w.serve()

	if sink == nil {
		sink = func(string) {}
	}

	c, err := New(context.Background(), pipe.Attach(slog.Default(), "mem", ctrlSide), w, Config{
		Logger:          slog.Default(),
		PrintSink:       sink,
		ShutdownTimeout: time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Dispose()
		w.waitExited(t)
	})

	return c, w
}

func (w *mockWorker) serve() {
	defer w.exit()

	if err := frame.WriteSignal(w.conn, frame.Start); err != nil {
		return
	}

	for {
		req, err := frame.Decode(w.conn)
		if err != nil {
			return
		}

		w.mu.Lock()
		if req.Signal == frame.Termination {
			w.terminations++
			w.mu.Unlock()

			return
		}

		w.requests = append(w.requests, req)
		w.mu.Unlock()

		for _, f := range w.reply(w, req) {
			if err := frame.Encode(w.conn, f); err != nil {
				return
			}
		}
	}
}

func (w *mockWorker) exit() {
	w.once.Do(func() {
		if w.conn != nil {
			_ = w.conn.Close()
		}

		if w.Alive() {
			close(w.exited)
		}
	})
}

func (w *mockWorker) waitExited(t *testing.T) {
	t.Helper()

	select {
	case <-w.exited:
	case <-time.After(5 * time.Second):
		t.Fatal("mock worker did not exit")
	}
}

func (w *mockWorker) recorded() []frame.Frame {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]frame.Frame(nil), w.requests...)
}

func (w *mockWorker) terminationCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.terminations
}

func (w *mockWorker) Pid() int { return 4242 }

func (w *mockWorker) Alive() bool {
	select {
	case <-w.exited:
		return false
	default:
		return true
	}
}

func (w *mockWorker) Exited() <-chan struct{} { return w.exited }

func (w *mockWorker) Terminate() error {
	if !w.Alive() {
		return nil
	}

	w.mu.Lock()
	w.killed = true
	w.mu.Unlock()

	w.exit()

	return nil
}
