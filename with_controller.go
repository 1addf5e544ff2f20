package aimsunbridge

import (
	"context"
	"fmt"
)

// WithController manages controller lifecycle with automatic cleanup.
//
// This helper starts a controller with the provided options, executes the
// callback function, and disposes the controller when done, whether fn
// returns normally, returns an error or panics.
//
// If the callback returns an error, it is returned to the caller.
// If Dispose fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := aimsunbridge.WithController(ctx, func(c aimsunbridge.Controller) error {
//	    _, err := tools.Sequence{Tools: steps}.Execute(ctx, c)
//	    return err
//	},
//	    aimsunbridge.WithLogger(log),
//	    aimsunbridge.WithExecutable(exe),
//	    aimsunbridge.WithProjectFile(project),
//	)
func WithController(ctx context.Context, fn func(Controller) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	c, err := New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to start controller: %w", err)
	}

	defer func() {
		if disposeErr := c.Dispose(); disposeErr != nil {
			log.Warn("failed to dispose controller", "error", disposeErr)
		}
	}()

	return fn(c)
}
