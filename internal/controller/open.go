package controller

import (
	"context"
	"io"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tmgtoolbox/aimsunbridge/internal/config"
	"github.com/tmgtoolbox/aimsunbridge/internal/errors"
	"github.com/tmgtoolbox/aimsunbridge/internal/pipe"
	"github.com/tmgtoolbox/aimsunbridge/internal/worker"
)

// Open creates the channel, launches the worker against it, waits for the
// worker to connect and consumes its handshake.
//
// The channel exists before the worker starts. If the worker exits before
// it connects, Open fails with LaunchError instead of waiting forever.
// On any failure everything created so far is released.
func Open(ctx context.Context, opts *config.Options) (*Controller, error) {
	if opts == nil {
		opts = &config.Options{}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	name := opts.PipeName
	if name == "" {
		name = generatePipeName()
	}

	ch, err := pipe.Create(log, name)
	if err != nil {
		return nil, &errors.LaunchError{Reason: "create channel", Err: err}
	}

	launcher := opts.Launcher
	if launcher == nil {
		launcher = worker.NewLauncher(opts.WorkerConfig(log))
	}

	handle, err := launcher.Launch(ctx, ch.Addr())
	if err != nil {
		_ = ch.Close()

		return nil, err
	}

	if err := awaitWorker(ctx, ch, handle); err != nil {
		log.Error("Worker never connected", "error", err)
		_ = handle.Terminate()
		_ = ch.Close()

		return nil, err
	}

	c, err := New(ctx, ch, handle, Config{
		Logger:          log,
		PrintSink:       opts.PrintSink,
		ShutdownTimeout: opts.ShutdownTimeout,
	})
	if err != nil {
		_ = handle.Terminate()
		_ = ch.Close()

		return nil, err
	}

	return c, nil
}

// awaitWorker waits for the worker to connect while watching for it to exit.
func awaitWorker(ctx context.Context, ch *pipe.Channel, handle worker.Handle) error {
	connectCtx, connected := context.WithCancel(ctx)
	defer connected()

	g, gCtx := errgroup.WithContext(connectCtx)

	g.Go(func() error {
		defer connected()

		if err := ch.WaitForConnection(gCtx); err != nil {
			return &errors.LaunchError{Reason: "wait for worker connection", Err: err}
		}

		return nil
	})

	exited := &errors.LaunchError{Reason: "worker exited before connecting to the channel"}

	g.Go(func() error {
		select {
		case <-handle.Exited():
			return exited
		case <-gCtx.Done():
			return nil
		}
	})

	err := g.Wait()

	// Both goroutines are done, so a connection accepted before the exit was
	// noticed is visible here. The handshake decides what such a worker sent.
	if err == exited && ch.Connected() {
		return nil
	}

	return err
}

// generatePipeName creates a unique channel name using ULID.
func generatePipeName() string {
	return ulid.Make().String()
}
