// Package aimsunbridge drives an Aimsun console worker from Go.
//
// A controller owns one worker process and a private duplex channel to it.
// The worker runs a bridge script that waits for requests on the channel:
// run a toolbox script with JSON parameters, switch to another network
// file, or save the open network. Replies arrive on the same channel as
// signal-tagged frames; print output produced by a tool is forwarded to a
// print sink while the request is still outstanding.
//
// # Basic Usage
//
// Use WithController for automatic lifecycle management:
//
//	err := aimsunbridge.WithController(ctx, func(c aimsunbridge.Controller) error {
//	    ok, err := tools.ImportNetwork{NetworkPackageFile: "Frabitztown.nwp"}.Execute(ctx, c)
//	    if err != nil {
//	        return err
//	    }
//	    if !ok {
//	        return errors.New("import did not complete")
//	    }
//	    _, err = c.SaveNetworkModel(ctx, "Frabitztown.ang")
//	    return err
//	},
//	    aimsunbridge.WithExecutable(`C:\Program Files\Aimsun\Aimsun Next 22\aconsole.exe`),
//	    aimsunbridge.WithProjectFile("blank.ang"),
//	)
//
// Or use New directly and Dispose when done:
//
//	c, err := aimsunbridge.New(ctx, opts...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Dispose()
//
// # Cancellation
//
// Requests have no timeout of their own. Cancelling the context passed to a
// request closes the channel, which unblocks the call with a
// ConnectionLostError wrapping the context's error. The controller cannot
// be used again after that and should be disposed.
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	c, err := aimsunbridge.New(ctx, aimsunbridge.WithLogger(logger), ...)
//
// Worker stdout and stderr are forwarded to the logger at debug level.
//
// # Error Handling
//
// Failures are reported with typed errors:
//
//	ok, err := c.Run(ctx, tool, params)
//	if err != nil {
//	    if rtErr, ok := errors.AsType[*aimsunbridge.ToolRuntimeError](err); ok {
//	        log.Printf("tool failed: %s", rtErr.Message)
//	    }
//	    if _, ok := errors.AsType[*aimsunbridge.ConnectionLostError](err); ok {
//	        // the worker is gone; dispose and start a new controller
//	    }
//	}
package aimsunbridge
